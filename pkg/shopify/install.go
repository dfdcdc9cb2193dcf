package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
)

const (
	accessTokenPath      = "/admin/oauth/access_token" //nolint:gosec // endpoint path, not a credential
	accessTokenAttribute = "access_token"
)

// InstallationState is a step of the installation handshake.
type InstallationState int

// Installation states: Received → Validated → Exchanged, or Received → Rejected.
const (
	StateReceived InstallationState = iota
	StateValidated
	StateExchanged
	StateRejected
)

func (s InstallationState) String() string {
	switch s {
	case StateReceived:
		return "received"
	case StateValidated:
		return "validated"
	case StateExchanged:
		return "exchanged"
	case StateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Token exchange results reported to the Observer.
const (
	ExchangeResultSuccess   = "success"
	ExchangeResultRejected  = "rejected"
	ExchangeResultTransport = "transport_error"
	ExchangeResultMalformed = "malformed_response"
)

// InstallationConfirmer completes an installation: it verifies the callback
// and exchanges its authorization code for an access token.
type InstallationConfirmer struct {
	doer     Doer
	checker  *SecurityChecker
	logger   *log.Logger
	observer Observer
}

// ConfirmerOption configures the InstallationConfirmer.
type ConfirmerOption func(*InstallationConfirmer)

// WithSecurityChecker overrides the default checker.
func WithSecurityChecker(c *SecurityChecker) ConfirmerOption {
	return func(ic *InstallationConfirmer) {
		ic.checker = c
	}
}

// WithConfirmerLogger sets the logger used for state transitions.
func WithConfirmerLogger(l *log.Logger) ConfirmerOption {
	return func(ic *InstallationConfirmer) {
		ic.logger = l
	}
}

// WithConfirmerObserver sets the instrumentation hook.
func WithConfirmerObserver(o Observer) ConfirmerOption {
	return func(ic *InstallationConfirmer) {
		if o != nil {
			ic.observer = o
		}
	}
}

// NewInstallationConfirmer creates a confirmer that sends the token exchange
// through doer.
func NewInstallationConfirmer(doer Doer, opts ...ConfirmerOption) *InstallationConfirmer {
	ic := &InstallationConfirmer{
		doer:     doer,
		checker:  NewSecurityChecker(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(ic)
	}
	return ic
}

type tokenExchangeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Code         string `json:"code"`
}

// RequestPermanentAccessToken verifies cb and, only if it passes, exchanges
// the authorization code once. It returns a *SecurityCheckFailure for a
// rejected callback, a *TransportError for a failed call and a
// *MissingAttributeError when the response lacks access_token.
func (ic *InstallationConfirmer) RequestPermanentAccessToken(
	ctx context.Context,
	cb AuthorizationCallback,
	app AppCredentials,
	expectedNonce string,
) (*AccessToken, error) {
	ic.transition(StateReceived, "shop", cb.Shop)

	if err := ic.checker.Verify(cb, app.ClientSecret, expectedNonce); err != nil {
		var failure *SecurityCheckFailure
		if errors.As(err, &failure) {
			ic.observer.ObserveRejectedCallback(failure.Property)
		}
		ic.observer.ObserveTokenExchange(ExchangeResultRejected)
		ic.transition(StateRejected, "shop", cb.Shop, "err", err)
		return nil, err
	}
	ic.transition(StateValidated, "shop", cb.Shop)

	req := NewRequest(http.MethodPost, accessTokenPath).
		WithShop(cb.Shop).
		WithBody(tokenExchangeRequest{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			Code:         cb.Code,
		})

	resp, err := ic.doer.Do(ctx, req)
	if err != nil {
		ic.observer.ObserveTokenExchange(ExchangeResultTransport)
		return nil, err
	}

	token, err := decodeAccessToken(resp)
	if err != nil {
		ic.observer.ObserveTokenExchange(ExchangeResultMalformed)
		return nil, err
	}

	ic.observer.ObserveTokenExchange(ExchangeResultSuccess)
	ic.transition(StateExchanged, "shop", cb.Shop, "scopes", token.Scopes.String(), "online", token.Online())
	return token, nil
}

func (ic *InstallationConfirmer) transition(state InstallationState, keyvals ...any) {
	if ic.logger == nil {
		return
	}
	ic.logger.Debug("installation "+state.String(), keyvals...)
}

func decodeAccessToken(resp *Response) (*AccessToken, error) {
	if _, err := attribute(resp, accessTokenAttribute); err != nil {
		return nil, err
	}
	var token AccessToken
	if err := json.Unmarshal(resp.Body, &token); err != nil {
		return nil, fmt.Errorf("%w: parsing token response: %w", ErrInvalidInput, err)
	}
	if token.Token == "" {
		return nil, &MissingAttributeError{Attribute: accessTokenAttribute}
	}
	return &token, nil
}
