package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// StringList is a list field the backend may send either as a JSON array
// or as a single comma-delimited string. It is always held as an ordered
// list of trimmed entries.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = SplitList(s)
		return nil
	case '[':
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		// Pre-split lists are kept as-is apart from trimming.
		out := make(StringList, 0, len(items))
		for _, item := range items {
			out = append(out, strings.TrimSpace(item))
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("list field must be a string or an array of strings, got %s", string(data))
	}
}

// String joins the entries back into the backend's flat form.
func (l StringList) String() string {
	return strings.Join(l, ", ")
}

// SplitList splits a comma-delimited string and trims whitespace around each entry.
// Empty entries are dropped, so splitting already-split single tokens is a no-op.
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Course is a single upskilling suggestion.
type Course struct {
	Platform  string     `json:"platform"`
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	BannerURL string     `json:"banner_url"`
	Tags      StringList `json:"tags"`
}

// Job is a single job suggestion.
type Job struct {
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       string     `json:"location"`
	Description    string     `json:"description"`
	RequiredSkills StringList `json:"required_skills"`
	Link           string     `json:"link"`
}

// RecommendationSet is the ranked pair of course and job suggestions for the current profile.
// Order is the backend's ranking and must be preserved.
type RecommendationSet struct {
	Courses []Course `json:"courses"`
	Jobs    []Job    `json:"jobs"`
}

// EmptyRecommendations returns the empty pair shown while regenerating or after a failure.
func EmptyRecommendations() RecommendationSet {
	return RecommendationSet{Courses: []Course{}, Jobs: []Job{}}
}

// IsEmpty reports whether the set holds no courses and no jobs.
func (s RecommendationSet) IsEmpty() bool {
	return len(s.Courses) == 0 && len(s.Jobs) == 0
}
