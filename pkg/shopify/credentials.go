package shopify

import (
	"net/http"
)

const accessTokenHeader = "X-Shopify-Access-Token" //nolint:gosec // header name, not a credential

// AccessToken is the result of exchanging an authorization code. Online
// (per-user) tokens carry the associated user and its scopes.
type AccessToken struct {
	Token                string          `json:"access_token"`
	Scopes               ScopeSet        `json:"scope"`
	AssociatedUser       *AssociatedUser `json:"associated_user,omitempty"`
	AssociatedUserScopes ScopeSet        `json:"associated_user_scope"`
	ExpiresIn            int64           `json:"expires_in,omitempty"` // seconds, online tokens only
}

// Online reports whether the token was issued for per-user access.
func (t AccessToken) Online() bool {
	return t.AssociatedUser != nil
}

// PrivateCredentials are the static key and password of a private app.
type PrivateCredentials struct {
	APIKey       string
	Password     string
	SharedSecret string
}

// AppCredentials identify a public app during installation. ClientSecret is
// both the HMAC key for callbacks and the secret sent to the token endpoint.
type AppCredentials struct {
	ClientID     string
	ClientSecret string
}

// RequestOption mutates an outgoing HTTP request.
type RequestOption func(*http.Request)

// Credentials holds either an OAuth access token or private app credentials.
// When both are set the access token takes precedence.
type Credentials struct {
	token   *AccessToken
	private *PrivateCredentials
}

// NewOAuthCredentials returns credentials backed by an access token.
func NewOAuthCredentials(token AccessToken) Credentials {
	return Credentials{}.WithAccessToken(token)
}

// NewPrivateCredentials returns credentials backed by a private app key.
func NewPrivateCredentials(p PrivateCredentials) Credentials {
	return Credentials{}.WithPrivate(p)
}

// WithAccessToken returns a copy of c using token.
func (c Credentials) WithAccessToken(token AccessToken) Credentials {
	c.token = &token
	return c
}

// WithPrivate returns a copy of c using p.
func (c Credentials) WithPrivate(p PrivateCredentials) Credentials {
	c.private = &p
	return c
}

// AccessToken returns the OAuth token, if any.
func (c Credentials) AccessToken() (AccessToken, bool) {
	if c.token == nil || c.token.Token == "" {
		return AccessToken{}, false
	}
	return *c.token, true
}

// Private returns the private app credentials, if any.
func (c Credentials) Private() (PrivateCredentials, bool) {
	if c.private == nil || c.private.APIKey == "" {
		return PrivateCredentials{}, false
	}
	return *c.private, true
}

// IsZero reports whether neither credential kind is usable.
func (c Credentials) IsZero() bool {
	_, hasToken := c.AccessToken()
	_, hasPrivate := c.Private()
	return !hasToken && !hasPrivate
}

// RequestOptions converts the credentials into request options: the access
// token header for OAuth, basic auth for private apps.
func (c Credentials) RequestOptions() []RequestOption {
	if token, ok := c.AccessToken(); ok {
		return []RequestOption{func(r *http.Request) {
			r.Header.Set(accessTokenHeader, token.Token)
		}}
	}
	if p, ok := c.Private(); ok {
		return []RequestOption{func(r *http.Request) {
			r.SetBasicAuth(p.APIKey, p.Password)
		}}
	}
	return nil
}
