package shopify

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	authorizePath = "/admin/oauth/authorize"

	perUserGrantOption = "per-user"
)

// NewNonce returns a random state value for one installation attempt.
func NewNonce() string {
	return uuid.NewString()
}

// AuthorizationURIBuilder composes the installation redirect URL. It is an
// immutable value: every With method returns a modified copy, so the order of
// calls does not matter and a partially configured builder can be shared.
// Required fields are checked by URI.
type AuthorizationURIBuilder struct {
	shop        string
	clientID    string
	nonce       string
	redirectURI string
	scopes      ScopeSet
	online      bool
}

// NewAuthorizationURIBuilder returns an empty builder requesting offline
// access.
func NewAuthorizationURIBuilder() AuthorizationURIBuilder {
	return AuthorizationURIBuilder{}
}

// WithShop sets the shop name or domain.
func (b AuthorizationURIBuilder) WithShop(shop string) AuthorizationURIBuilder {
	b.shop = shop
	return b
}

// WithClientID sets the app's API key.
func (b AuthorizationURIBuilder) WithClientID(id string) AuthorizationURIBuilder {
	b.clientID = id
	return b
}

// WithNonce sets the state value echoed back in the callback.
func (b AuthorizationURIBuilder) WithNonce(nonce string) AuthorizationURIBuilder {
	b.nonce = nonce
	return b
}

// WithRedirectURI sets the callback target.
func (b AuthorizationURIBuilder) WithRedirectURI(uri string) AuthorizationURIBuilder {
	b.redirectURI = uri
	return b
}

// WithScopes adds scopes to the requested set.
func (b AuthorizationURIBuilder) WithScopes(scopes ...string) AuthorizationURIBuilder {
	b.scopes = b.scopes.With(scopes...)
	return b
}

// WithScopeSet adds every scope of set to the requested set.
func (b AuthorizationURIBuilder) WithScopeSet(set ScopeSet) AuthorizationURIBuilder {
	return b.WithScopes(set.Requested()...)
}

// WithOnlineAccess requests a per-user token. It clears offline access.
func (b AuthorizationURIBuilder) WithOnlineAccess() AuthorizationURIBuilder {
	b.online = true
	return b
}

// WithOfflineAccess requests a permanent shop token. It clears online access.
func (b AuthorizationURIBuilder) WithOfflineAccess() AuthorizationURIBuilder {
	b.online = false
	return b
}

// Scopes returns the scopes requested so far.
func (b AuthorizationURIBuilder) Scopes() ScopeSet {
	return b.scopes
}

// URI validates the builder and returns the authorize URL. Query parameters
// are emitted as client_id, scope, redirect_uri, state and, for online
// access only, grant_options[].
func (b AuthorizationURIBuilder) URI() (*url.URL, error) {
	switch {
	case strings.TrimSpace(b.shop) == "":
		return nil, &MissingParameterError{Parameter: "shop"}
	case strings.TrimSpace(b.clientID) == "":
		return nil, &MissingParameterError{Parameter: "client_id"}
	case b.scopes.Len() == 0:
		return nil, &MissingParameterError{Parameter: "scope"}
	case strings.TrimSpace(b.redirectURI) == "":
		return nil, &MissingParameterError{Parameter: "redirect_uri"}
	case strings.TrimSpace(b.nonce) == "":
		return nil, &MissingParameterError{Parameter: "state"}
	}

	host, err := NormalizeShop(b.shop)
	if err != nil {
		return nil, err
	}

	q := orderedQuery{}
	q.add("client_id", b.clientID)
	q.add("scope", b.scopes.String())
	q.add("redirect_uri", b.redirectURI)
	q.add("state", b.nonce)
	if b.online {
		q.add("grant_options[]", perUserGrantOption)
	}

	return &url.URL{
		Scheme:   "https",
		Host:     host,
		Path:     authorizePath,
		RawQuery: q.encode(),
	}, nil
}

// String returns the URI or an empty string if the builder is incomplete.
func (b AuthorizationURIBuilder) String() string {
	u, err := b.URI()
	if err != nil {
		return ""
	}
	return u.String()
}

// orderedQuery encodes parameters in insertion order; url.Values sorts keys.
type orderedQuery struct {
	pairs []string
}

func (q *orderedQuery) add(key, value string) {
	q.pairs = append(q.pairs, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *orderedQuery) encode() string {
	return strings.Join(q.pairs, "&")
}
