package main

import (
	"errors"
	"fmt"

	"github.com/jonathan/career-portal/internal/types"
	"github.com/spf13/cobra"
)

// draftFlag binds a command-line flag to one ProfileDraft field.
type draftFlag struct {
	name  string
	usage string
	field func(*types.ProfileDraft) *string
}

var draftFlags = []draftFlag{
	{"full-name", "Full name (required)", func(d *types.ProfileDraft) *string { return &d.FullName }},
	{"education", "Education (required)", func(d *types.ProfileDraft) *string { return &d.Education }},
	{"skills", "Comma-separated skills (required)", func(d *types.ProfileDraft) *string { return &d.Skills }},
	{"experience", "Experience (required)", func(d *types.ProfileDraft) *string { return &d.Experience }},
	{"summary", "Professional summary", func(d *types.ProfileDraft) *string { return &d.Summary }},
	{"phone", "Phone number", func(d *types.ProfileDraft) *string { return &d.Phone }},
	{"location", "Location", func(d *types.ProfileDraft) *string { return &d.Location }},
	{"github-url", "GitHub profile URL", func(d *types.ProfileDraft) *string { return &d.GithubURL }},
	{"linkedin-url", "LinkedIn profile URL", func(d *types.ProfileDraft) *string { return &d.LinkedinURL }},
	{"portfolio-url", "Portfolio URL", func(d *types.ProfileDraft) *string { return &d.PortfolioURL }},
	{"languages", "Comma-separated spoken languages", func(d *types.ProfileDraft) *string { return &d.Languages }},
}

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage your professional profile",
	}
	cmd.AddCommand(newProfileEditCmd(opts))
	return cmd
}

func newProfileEditCmd(opts *rootOptions) *cobra.Command {
	values := make(map[string]*string, len(draftFlags))

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Create or update your profile",
		Long: `Starts from your saved profile and applies the given flags on top.
The whole profile is submitted; on success your recommendations are refreshed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if _, err := a.credential(); err != nil {
					return err
				}
				ctx := cmd.Context()
				a.orch.Start(ctx)

				if v := a.orch.View(); v.ProfileErr != nil && v.Profile == nil {
					a.logger.Warn("editing without the saved profile", "error", v.ProfileErr)
				}

				a.orch.OpenEditor()
				a.orch.UpdateDraft(func(d *types.ProfileDraft) {
					for _, f := range draftFlags {
						if cmd.Flags().Changed(f.name) {
							*f.field(d) = *values[f.name]
						}
					}
				})

				if err := a.orch.Submit(ctx); err != nil {
					var draftErr *types.DraftError
					if errors.As(err, &draftErr) {
						a.printer.PrintDraft(a.orch.View().Draft)
					}
					return err
				}

				_, _ = fmt.Fprintln(a.out, "Profile saved.")
				a.printer.PrintView(a.orch.View())
				return nil
			})
		},
	}

	for _, f := range draftFlags {
		values[f.name] = cmd.Flags().String(f.name, "", f.usage)
	}
	return cmd
}
