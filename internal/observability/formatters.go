// Package observability provides logging and formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/career-portal/internal/dashboard"
	"github.com/jonathan/career-portal/internal/types"
	"golang.org/x/net/html"
)

// blockElements end a run of text; PlainText separates them with a space.
const blockElements = "p, div, br, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, td, th, section, article, blockquote, pre"

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer renders profiles, recommendations and dashboard views as text boxes.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PlainText strips markup from generated descriptions, which sometimes
// arrive as HTML fragments. Whitespace runs collapse to single spaces.
func PlainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script, style").Remove()
	doc.Find(blockElements).Each(func(_ int, sel *goquery.Selection) {
		sel.AfterNodes(&html.Node{Type: html.TextNode, Data: " "})
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// PrintView outputs whatever the current mode shows.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintView(v dashboard.View) {
	switch v.Mode {
	case dashboard.Unauthenticated:
		fmt.Fprintln(p.out, "Not signed in. Run 'portal login' or 'portal register'.")
	case dashboard.EditorOpen:
		if v.ProfileErr != nil {
			fmt.Fprintf(p.out, "Could not load your profile: %v\n", v.ProfileErr)
		}
		p.PrintDraft(v.Draft)
	case dashboard.Loading:
		if v.Profile == nil {
			fmt.Fprintln(p.out, "Loading your profile...")
			return
		}
		p.PrintProfile(v.Profile)
		fmt.Fprintln(p.out, "Generating personalized recommendations...")
	case dashboard.Dashboard:
		p.PrintProfile(v.Profile)
		if v.RecommendationsFailed {
			fmt.Fprintln(p.out, "Recommendations are unavailable right now. Try 'portal regenerate'.")
			return
		}
		p.PrintRecommendations(v.Recommendations)
	}
}

// PrintProfile outputs the saved profile summary.
func (p *Printer) PrintProfile(profile *types.Profile) {
	if profile == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:       %s\n", profile.FullName))
	sb.WriteString(fmt.Sprintf("Education:  %s\n", profile.Education))
	sb.WriteString(fmt.Sprintf("Experience: %s\n", profile.Experience))
	if profile.Location != "" {
		sb.WriteString(fmt.Sprintf("Location:   %s\n", profile.Location))
	}

	if skills := profile.SkillList(); len(skills) > 0 {
		sb.WriteString("\nSkills:\n")
		count := min(len(skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", skills[i]))
		}
		if len(skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(skills)-maxItemsToShow))
		}
	}

	if profile.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(profile.Summary)
	}

	p.printBox("YOUR PROFILE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDraft outputs the editor draft, marking empty required fields.
func (p *Printer) PrintDraft(draft types.ProfileDraft) {
	field := func(label, value string, required bool) string {
		if value == "" && required {
			value = "(required)"
		}
		return fmt.Sprintf("%-11s %s\n", label+":", value)
	}

	var sb strings.Builder
	sb.WriteString(field("Name", draft.FullName, true))
	sb.WriteString(field("Education", draft.Education, true))
	sb.WriteString(field("Skills", draft.Skills, true))
	sb.WriteString(field("Experience", draft.Experience, true))
	sb.WriteString(field("Summary", draft.Summary, false))
	sb.WriteString("\nSave with 'portal profile edit'")

	p.printBox("PROFILE EDITOR", sb.String())
}

// PrintRecommendations outputs courses and jobs. An empty set prints a placeholder.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintRecommendations(set types.RecommendationSet) {
	if set.IsEmpty() {
		fmt.Fprintln(p.out, "No recommendations yet.")
		return
	}

	if len(set.Courses) > 0 {
		var sb strings.Builder
		for i, course := range set.Courses {
			sb.WriteString(fmt.Sprintf("• %s\n", course.Title))
			// Courses without a banner show the platform name in its place.
			label := course.Platform
			if course.BannerURL != "" {
				label = fmt.Sprintf("%s [%s]", course.Platform, course.BannerURL)
			}
			sb.WriteString(fmt.Sprintf("  %s\n", label))
			if len(course.Tags) > 0 {
				sb.WriteString(fmt.Sprintf("  [%s]\n", course.Tags.String()))
			}
			if course.Link != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", course.Link))
			}
			if i < len(set.Courses)-1 {
				sb.WriteString("\n")
			}
		}
		p.printBox(fmt.Sprintf("RECOMMENDED COURSES (%d)", len(set.Courses)), strings.TrimSuffix(sb.String(), "\n"))
	}

	if len(set.Jobs) > 0 {
		var sb strings.Builder
		for i, job := range set.Jobs {
			sb.WriteString(fmt.Sprintf("• %s\n", job.Title))
			sb.WriteString(fmt.Sprintf("  %s, %s\n", job.Company, job.Location))
			if desc := PlainText(job.Description); desc != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", desc))
			}
			if len(job.RequiredSkills) > 0 {
				sb.WriteString(fmt.Sprintf("  Skills: %s\n", job.RequiredSkills.String()))
			}
			if job.Link != "" {
				sb.WriteString(fmt.Sprintf("  %s\n", job.Link))
			}
			if i < len(set.Jobs)-1 {
				sb.WriteString("\n")
			}
		}
		p.printBox(fmt.Sprintf("JOB MATCHES (%d)", len(set.Jobs)), strings.TrimSuffix(sb.String(), "\n"))
	}
}
