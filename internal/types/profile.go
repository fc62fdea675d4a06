package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Profile is the canonical professional record as stored by the backend.
type Profile struct {
	ID           int    `json:"id,omitempty"`
	UserID       int    `json:"user_id,omitempty"`
	FullName     string `json:"full_name"`
	Education    string `json:"education"`
	Skills       string `json:"skills"`
	Experience   string `json:"experience"`
	Summary      string `json:"summary,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Location     string `json:"location,omitempty"`
	GithubURL    string `json:"github_url,omitempty"`
	LinkedinURL  string `json:"linkedin_url,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty"`
	Languages    string `json:"languages,omitempty"`
	ResumePath   string `json:"resume_path,omitempty"`
}

// SkillList returns the profile's skills split on commas and trimmed.
func (p *Profile) SkillList() []string {
	return SplitList(p.Skills)
}

// Draft returns an editable copy of the profile's user-facing fields.
func (p *Profile) Draft() ProfileDraft {
	return ProfileDraft{
		FullName:     p.FullName,
		Education:    p.Education,
		Skills:       p.Skills,
		Experience:   p.Experience,
		Summary:      p.Summary,
		Phone:        p.Phone,
		Location:     p.Location,
		GithubURL:    p.GithubURL,
		LinkedinURL:  p.LinkedinURL,
		PortfolioURL: p.PortfolioURL,
		Languages:    p.Languages,
	}
}

// ProfileDraft is the editor's in-progress form data, submitted as a whole to POST /profile.
type ProfileDraft struct {
	FullName     string `json:"full_name" validate:"required,notblank"`
	Education    string `json:"education" validate:"required,notblank"`
	Skills       string `json:"skills" validate:"required,notblank"`
	Experience   string `json:"experience" validate:"required,notblank"`
	Summary      string `json:"summary"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	GithubURL    string `json:"github_url"`
	LinkedinURL  string `json:"linkedin_url"`
	PortfolioURL string `json:"portfolio_url"`
	Languages    string `json:"languages"`
}

// DraftError reports which required draft fields are missing.
type DraftError struct {
	Fields []string
	Cause  error
}

func (e *DraftError) Error() string {
	return fmt.Sprintf("profile draft is missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *DraftError) Unwrap() error {
	return e.Cause
}

// Validate checks that the required fields are present and not blank.
// Field names in the returned *DraftError use their JSON spelling.
func (d *ProfileDraft) Validate() error {
	validate := newValidator()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		return name
	})

	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &DraftError{Fields: fields, Cause: err}
}
