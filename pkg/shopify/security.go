package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	paramHMAC      = "hmac"
	paramSignature = "signature"
	paramShop      = "shop"
	paramCode      = "code"
	paramState     = "state"
	paramTimestamp = "timestamp"
)

// AuthorizationCallback holds the query parameters of the redirect Shopify
// sends after the merchant approves the installation.
type AuthorizationCallback struct {
	Shop      string
	Code      string
	Timestamp int64
	HMAC      string
	State     string
	Params    url.Values
}

// ParseCallback builds a callback from redirect query parameters. Missing
// parameters are left empty; only a malformed timestamp is an error.
func ParseCallback(params url.Values) (AuthorizationCallback, error) {
	cb := AuthorizationCallback{
		Shop:   params.Get(paramShop),
		Code:   params.Get(paramCode),
		HMAC:   params.Get(paramHMAC),
		State:  params.Get(paramState),
		Params: cloneValues(params),
	}
	if raw := params.Get(paramTimestamp); raw != "" {
		ts, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return AuthorizationCallback{}, fmt.Errorf(
				"%w: callback timestamp %q: %w", ErrInvalidInput, raw, err,
			)
		}
		cb.Timestamp = ts
	}
	return cb, nil
}

// ParseCallbackURL parses the query string of a full redirect URL.
func ParseCallbackURL(raw string) (AuthorizationCallback, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return AuthorizationCallback{}, fmt.Errorf("%w: callback url: %w", ErrInvalidInput, err)
	}
	return ParseCallback(u.Query())
}

// SecurityChecker validates installation callbacks. With no options it is a
// pure function of its inputs.
type SecurityChecker struct {
	checkShop bool
	maxAge    time.Duration
	nowFunc   func() time.Time
}

// SecurityOption configures the SecurityChecker.
type SecurityOption func(*SecurityChecker)

// WithShopDomainCheck requires the shop parameter to be a myshopify.com host.
func WithShopDomainCheck() SecurityOption {
	return func(c *SecurityChecker) {
		c.checkShop = true
	}
}

// WithMaxCallbackAge rejects callbacks whose timestamp is older than d.
func WithMaxCallbackAge(d time.Duration) SecurityOption {
	return func(c *SecurityChecker) {
		c.maxAge = d
	}
}

// WithCheckerNowFunc overrides the time function for testing.
func WithCheckerNowFunc(f func() time.Time) SecurityOption {
	return func(c *SecurityChecker) {
		c.nowFunc = f
	}
}

// NewSecurityChecker creates a SecurityChecker.
func NewSecurityChecker(opts ...SecurityOption) *SecurityChecker {
	c := &SecurityChecker{nowFunc: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verify checks the callback signature against sharedSecret and its state
// against expectedNonce. It returns a *SecurityCheckFailure naming the first
// property that does not match.
func (c *SecurityChecker) Verify(
	cb AuthorizationCallback,
	sharedSecret, expectedNonce string,
) error {
	want := Sign(cb.Params, sharedSecret)
	if !hmac.Equal([]byte(want), []byte(strings.ToLower(cb.HMAC))) {
		return &SecurityCheckFailure{Property: paramHMAC, Expected: want, Received: cb.HMAC}
	}

	if expectedNonce == "" ||
		subtle.ConstantTimeCompare([]byte(expectedNonce), []byte(cb.State)) != 1 {
		return &SecurityCheckFailure{
			Property: paramState,
			Expected: expectedNonce,
			Received: cb.State,
		}
	}

	if c.checkShop && !ValidShopDomain(cb.Shop) {
		return &SecurityCheckFailure{
			Property: paramShop,
			Expected: "<shop>" + shopDomainSuffix,
			Received: cb.Shop,
		}
	}

	if c.maxAge > 0 {
		oldest := c.nowFunc().Add(-c.maxAge).Unix()
		if cb.Timestamp < oldest {
			return &SecurityCheckFailure{
				Property: paramTimestamp,
				Expected: ">= " + strconv.FormatInt(oldest, 10),
				Received: strconv.FormatInt(cb.Timestamp, 10),
			}
		}
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 Shopify attaches to redirects: every
// parameter except hmac and signature, sorted by key, rendered as key=value
// and joined with '&'.
func Sign(params url.Values, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonicalize(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

func canonicalize(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == paramHMAC || k == paramSignature {
			continue
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		name, isArray := strings.CutSuffix(k, "[]")
		pairs = append(pairs, escapeKey(name)+"="+joinValues(params[k], isArray))
	}
	return strings.Join(pairs, "&")
}

// joinValues renders repeated parameters (ids[]=1&ids[]=2) as ["1", "2"].
func joinValues(values []string, isArray bool) string {
	if len(values) == 1 && !isArray {
		return escapeValue(values[0])
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = strconv.Quote(escapeValue(v))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var (
	valueEscaper = strings.NewReplacer("%", "%25", "&", "%26")
	keyEscaper   = strings.NewReplacer("%", "%25", "&", "%26", "=", "%3D")
)

func escapeValue(v string) string {
	return valueEscaper.Replace(v)
}

func escapeKey(k string) string {
	return keyEscaper.Replace(k)
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = slices.Clone(vals)
	}
	return out
}
