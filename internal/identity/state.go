// Package identity adapts tokens from the external identity provider into
// the signed-in/signed-out state the shop reacts to.
package identity

import "strings"

// Profile is what the identity provider knows about a signed-in user.
type Profile struct {
	ID    string
	Email string
	Name  string
	Phone *string
}

// State is the current identity. A nil Profile means signed out.
type State struct {
	Profile *Profile
}

// SignedOut returns the empty identity state.
func SignedOut() State {
	return State{}
}

// SignedIn returns a state carrying a copy of p.
func SignedIn(p Profile) State {
	p.ID = strings.TrimSpace(p.ID)
	return State{Profile: &p}
}

// IsSignedIn reports whether a user is present.
func (s State) IsSignedIn() bool {
	return s.Profile != nil && s.Profile.ID != ""
}

// UserID returns the signed-in user's id or "".
func (s State) UserID() string {
	if !s.IsSignedIn() {
		return ""
	}
	return s.Profile.ID
}

// DisplayName falls back to the email local part when the provider sent no name.
func (p Profile) DisplayName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(p.Email, "@"); ok && local != "" {
		return local
	}
	return "User"
}
