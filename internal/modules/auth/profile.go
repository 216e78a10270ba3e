package auth

import "github.com/ssorelay/core/internal/models"

// ExtractProfile maps verified ID-token claims onto the presentation
// profile stored with the session record. Unknown claims are kept raw.
func ExtractProfile(claims map[string]interface{}) models.Profile {
	profile := models.Profile{
		Subject:     stringClaim(claims, "sub"),
		DisplayName: stringClaim(claims, "name"),
		GivenName:   stringClaim(claims, "given_name"),
		FamilyName:  stringClaim(claims, "family_name"),
		Username:    stringClaim(claims, "preferred_username"),
		Email:       stringClaim(claims, "email"),
		RawClaims:   claims,
	}

	if raw, ok := claims["emails"].([]interface{}); ok {
		for _, entry := range raw {
			if email, ok := entry.(string); ok && email != "" {
				profile.Emails = append(profile.Emails, email)
			}
		}
	}
	return profile
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}
