package logout

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Claims decoded from a backchannel logout token. Only the subject is
// used for session matching.
type Claims struct {
	Issuer    string                     `json:"iss"`
	Subject   string                     `json:"sub"`
	SessionID string                     `json:"sid,omitempty"`
	Events    map[string]json.RawMessage `json:"events,omitempty"`
}

// ErrMalformedToken marks a token that does not have the three-part
// header.payload.signature shape. Callers treat it as client input error;
// anything past the structural check is a server-side fault.
var ErrMalformedToken = errors.New("logout token must have three dot-separated segments")

// DecodeUnverified splits the token, base64-decodes the claims segment
// and parses it. The signature and issuer are NOT verified — the caller
// is trusted by deployment topology.
func DecodeUnverified(token string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 3 {
		return nil, ErrMalformedToken
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decode claims segment: %w", err)
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	return &claims, nil
}

func decodeSegment(seg string) ([]byte, error) {
	// Tolerate both raw and padded base64url.
	if l := len(seg) % 4; l > 0 {
		seg += strings.Repeat("=", 4-l)
	}
	return base64.URLEncoding.DecodeString(seg)
}
