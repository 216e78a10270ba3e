package auth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/ssorelay/core/internal/config"
	"golang.org/x/oauth2"
)

// Negotiator drives the OIDC authorization-code flow against the external
// identity provider. The session core only consumes the claims it yields.
type Negotiator struct {
	oauth      *oauth2.Config
	verifier   *oidc.IDTokenVerifier
	issuerURL  string
	endSession string
}

// NewNegotiator discovers the provider and prepares the code flow.
func NewNegotiator(ctx context.Context, cfg config.OIDCConfig) (*Negotiator, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}

	var discovered struct {
		EndSessionEndpoint string `json:"end_session_endpoint"`
	}
	_ = provider.Claims(&discovered)

	return &Negotiator{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier:   provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		issuerURL:  cfg.IssuerURL,
		endSession: discovered.EndSessionEndpoint,
	}, nil
}

// AuthCodeURL returns the provider authorization URL for the given state.
func (n *Negotiator) AuthCodeURL(state string) string {
	return n.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for provider tokens.
func (n *Negotiator) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return n.oauth.Exchange(ctx, code)
}

// VerifyIDToken verifies the ID token and returns its claims.
func (n *Negotiator) VerifyIDToken(ctx context.Context, rawIDToken string) (map[string]interface{}, error) {
	idToken, err := n.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("id token verification failed: %w", err)
	}

	var claims map[string]interface{}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("claims extraction failed: %w", err)
	}
	return claims, nil
}

// LogoutURL returns the provider end-session URL, redirecting back to
// redirectURI afterwards.
func (n *Negotiator) LogoutURL(redirectURI string) string {
	endpoint := n.endSession
	if endpoint == "" {
		endpoint = n.issuerURL + "/protocol/openid-connect/logout"
	}
	if redirectURI == "" {
		return endpoint
	}
	return endpoint + "?redirect_uri=" + url.QueryEscape(redirectURI)
}
