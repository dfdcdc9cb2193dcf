package shopify

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Common Admin API access scopes.
const (
	ScopeReadProducts   = "read_products"
	ScopeWriteProducts  = "write_products"
	ScopeReadCustomers  = "read_customers"
	ScopeWriteCustomers = "write_customers"
	ScopeReadOrders     = "read_orders"
	ScopeWriteOrders    = "write_orders"
	ScopeReadInventory  = "read_inventory"
	ScopeWriteInventory = "write_inventory"
)

// ScopeSet is an insertion-ordered set of permission identifiers. The zero
// value is an empty set. Adding returns a new set; the receiver is unchanged.
type ScopeSet struct {
	scopes []string
}

// NewScopeSet returns a set holding the given scopes, duplicates removed.
func NewScopeSet(scopes ...string) ScopeSet {
	return ScopeSet{}.With(scopes...)
}

// ParseScopeSet splits a comma separated scope string as returned by the
// token endpoint.
func ParseScopeSet(raw string) ScopeSet {
	return NewScopeSet(strings.Split(raw, ",")...)
}

// With returns a copy of s extended by scopes. Blank entries are skipped and
// scopes already present keep their original position.
func (s ScopeSet) With(scopes ...string) ScopeSet {
	out := ScopeSet{scopes: slices.Clone(s.scopes)}
	for _, scope := range scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" || slices.Contains(out.scopes, scope) {
			continue
		}
		out.scopes = append(out.scopes, scope)
	}
	return out
}

// Requested returns the scopes in insertion order.
func (s ScopeSet) Requested() []string {
	return slices.Clone(s.scopes)
}

// Contains reports whether scope is in the set.
func (s ScopeSet) Contains(scope string) bool {
	return slices.Contains(s.scopes, strings.TrimSpace(scope))
}

// Len returns the number of distinct scopes.
func (s ScopeSet) Len() int {
	return len(s.scopes)
}

// String returns the comma-joined scopes, the form the authorize endpoint
// expects.
func (s ScopeSet) String() string {
	return strings.Join(s.scopes, ",")
}

// MarshalJSON encodes the set as a JSON array in insertion order.
func (s ScopeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(append([]string{}, s.scopes...))
}

// UnmarshalJSON accepts either a JSON array or a comma separated string.
func (s *ScopeSet) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = NewScopeSet(list...)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: decoding scopes: %w", ErrInvalidInput, err)
	}
	*s = ParseScopeSet(raw)
	return nil
}
