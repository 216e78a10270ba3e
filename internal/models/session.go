package models

import (
	"strings"
	"time"
)

// SessionRecord is the server-held proof that an identity is currently
// logged in. Records are immutable once created; a new login for the same
// identity replaces the record wholesale.
type SessionRecord struct {
	Identity      string    `json:"identity"`
	SessionToken  string    `json:"session_token"`
	EstablishedAt time.Time `json:"established_at"`
	Profile       Profile   `json:"profile"`
}

// Profile carries identity-provider claims used only for presentation.
// Identity matching never looks at these fields.
type Profile struct {
	Subject     string                 `json:"sub"`
	DisplayName string                 `json:"display_name,omitempty"`
	GivenName   string                 `json:"given_name,omitempty"`
	FamilyName  string                 `json:"family_name,omitempty"`
	Username    string                 `json:"username,omitempty"`
	Email       string                 `json:"email,omitempty"`
	Emails      []string               `json:"emails,omitempty"`
	RawClaims   map[string]interface{} `json:"raw_claims,omitempty"`
}

// PresentedName resolves the display name with the documented fallback
// chain: displayName → "given family" → username → "Unknown".
func (p Profile) PresentedName() string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	composed := strings.TrimSpace(strings.TrimSpace(p.GivenName) + " " + strings.TrimSpace(p.FamilyName))
	if composed != "" {
		return composed
	}
	if username := strings.TrimSpace(p.Username); username != "" {
		return username
	}
	return "Unknown"
}

// PresentedEmail resolves the contact address: first entry of the emails
// array → singular email → "No email".
func (p Profile) PresentedEmail() string {
	for _, email := range p.Emails {
		if email = strings.TrimSpace(email); email != "" {
			return email
		}
	}
	if email := strings.TrimSpace(p.Email); email != "" {
		return email
	}
	return "No email"
}
