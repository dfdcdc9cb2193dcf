package shopify

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const shopDomainSuffix = ".myshopify.com"

var shopDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*\.myshopify\.com$`)

// NormalizeShop turns a shop name ("acme"), domain ("acme.myshopify.com") or
// URL ("https://acme.myshopify.com/admin") into the canonical shop host.
func NormalizeShop(shop string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(shop))
	if host == "" {
		return "", fmt.Errorf("%w: shop is empty", ErrInvalidShop)
	}
	if strings.Contains(host, "://") {
		u, err := url.Parse(host)
		if err != nil {
			return "", fmt.Errorf("%w: parsing %q: %w", ErrInvalidShop, shop, err)
		}
		host = u.Hostname()
	}
	host = strings.TrimSuffix(host, "/")
	if !strings.Contains(host, ".") {
		host += shopDomainSuffix
	}
	if !shopDomainPattern.MatchString(host) {
		return "", fmt.Errorf("%w: %q", ErrInvalidShop, shop)
	}
	return host, nil
}

// ValidShopDomain reports whether host is already a canonical shop host.
func ValidShopDomain(host string) bool {
	return shopDomainPattern.MatchString(host)
}

// ShopName returns the subdomain part of a canonical shop host.
func ShopName(host string) string {
	return strings.TrimSuffix(host, shopDomainSuffix)
}
