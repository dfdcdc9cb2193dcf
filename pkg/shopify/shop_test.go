package shopify_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

func TestNormalizeShop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "acme", want: "acme.myshopify.com"},
		{in: "ACME.myshopify.com", want: "acme.myshopify.com"},
		{in: "https://acme.myshopify.com/admin", want: "acme.myshopify.com"},
		{in: " my-store-2 ", want: "my-store-2.myshopify.com"},
		{in: "", wantErr: true},
		{in: "acme.example.com", wantErr: true},
		{in: "-acme", wantErr: true},
		{in: "acme shop", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := shopify.NormalizeShop(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, shopify.ErrInvalidShop)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, shopify.ValidShopDomain(got))
		})
	}
}

func TestShopName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "acme", shopify.ShopName("acme.myshopify.com"))
}
