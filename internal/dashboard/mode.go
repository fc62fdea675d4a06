package dashboard

import "fmt"

// Mode is the screen the client should show. It is derived, never stored.
type Mode int

const (
	// Unauthenticated means no credential is present; show the login form.
	Unauthenticated Mode = iota
	// Loading means the profile is not known yet or recommendations are being fetched.
	Loading
	// EditorOpen means the profile editor is shown.
	EditorOpen
	// Dashboard means the profile and its recommendations are shown.
	Dashboard
)

func (m Mode) String() string {
	switch m {
	case Unauthenticated:
		return "unauthenticated"
	case Loading:
		return "loading"
	case EditorOpen:
		return "editor"
	case Dashboard:
		return "dashboard"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// DeriveMode computes the mode from the session and controller flags.
func DeriveMode(authenticated, profilePresent, editorOpen, recommendationsLoading bool) Mode {
	switch {
	case !authenticated:
		return Unauthenticated
	case editorOpen:
		return EditorOpen
	case !profilePresent, recommendationsLoading:
		return Loading
	default:
		return Dashboard
	}
}
