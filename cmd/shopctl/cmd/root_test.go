package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

// These tests share the global root command and viper instance, so they
// must not run in parallel.

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "shopctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const appConfig = `
app:
  client_id: client-123
  client_secret: hush
  scopes: [read_products, write_orders]
  redirect_uri: https://app.example.com/auth/callback
logging:
  level: error
`

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "shopctl dev\n", out)
}

func TestAuthURLCommand(t *testing.T) {
	cfg := writeConfig(t, appConfig)

	out, err := execute(t, "auth-url", "--config", cfg, "--shop", "acme", "--nonce", "nonce-1")
	require.NoError(t, err)
	assert.Equal(t,
		"https://acme.myshopify.com/admin/oauth/authorize"+
			"?client_id=client-123"+
			"&scope=read_products%2Cwrite_orders"+
			"&redirect_uri=https%3A%2F%2Fapp.example.com%2Fauth%2Fcallback"+
			"&state=nonce-1\n",
		out,
	)
}

func TestAuthURLCommand_MissingShop(t *testing.T) {
	cfg := writeConfig(t, appConfig)

	_, err := execute(t, "auth-url", "--config", cfg, "--nonce", "nonce-1")
	require.Error(t, err)

	var missing *shopify.MissingParameterError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "shop", missing.Parameter)
}

func TestVerifyCommand(t *testing.T) {
	cfg := writeConfig(t, appConfig)

	params := url.Values{
		"code":      {"auth-code-1"},
		"shop":      {"acme.myshopify.com"},
		"state":     {"nonce-1"},
		"timestamp": {"1700000000"},
	}
	params.Set("hmac", shopify.Sign(params, "hush"))
	callbackURL := "https://app.example.com/auth/callback?" + params.Encode()

	out, err := execute(t, "verify", "--config", cfg, "--nonce", "nonce-1", callbackURL)
	require.NoError(t, err)
	assert.Contains(t, out, "Callback verified for acme.myshopify.com")

	_, err = execute(t, "verify", "--config", cfg, "--nonce", "other", callbackURL)
	var failure *shopify.SecurityCheckFailure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, "state", failure.Property)
}

func TestProductsListCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/products.json", r.URL.Path)
		assert.Equal(t, "shpat_cli", r.Header.Get("X-Shopify-Access-Token"))
		assert.Equal(t, "active", r.URL.Query().Get("status"))

		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"products":[
				{"id":1,"title":"Hat","vendor":"Acme","status":"active"},
				{"id":2,"title":"Scarf","vendor":"Acme","status":"active"}
			]}`))
			return
		}
		_, _ = w.Write([]byte(`{"products":[]}`))
	}))
	defer srv.Close()

	cfg := writeConfig(t, appConfig+`
api:
  base_url: `+srv.URL+`
pagination:
  page_delay: 1ms
`)

	out, err := execute(t,
		"products", "list",
		"--config", cfg,
		"--shop", "acme",
		"--access-token", "shpat_cli",
		"--status", "active",
		"--max", "0",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "Hat")
	assert.Contains(t, out, "Scarf")

	out, err = execute(t,
		"products", "list",
		"--config", cfg,
		"--shop", "acme",
		"--access-token", "shpat_cli",
		"--status", "active",
		"--max", "1",
		"--output", "json",
	)
	require.NoError(t, err)
	assert.Contains(t, out, `"title": "Hat"`)
	assert.NotContains(t, out, "Scarf")
}

func TestProductsListCommand_NoCredentials(t *testing.T) {
	cfg := writeConfig(t, appConfig)

	_, err := execute(t, "products", "list", "--config", cfg, "--shop", "acme")
	require.ErrorIs(t, err, errNoCredentials)
}

func TestShopCommand_RequiresShop(t *testing.T) {
	cfg := writeConfig(t, appConfig)

	_, err := execute(t, "shop", "--config", cfg, "--access-token", "shpat_cli")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shop: cannot be blank")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{in: "short", max: 10, want: "short"},
		{in: "exactly10!", max: 10, want: "exactly10!"},
		{in: "a much longer title", max: 10, want: "a much ..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truncate(tt.in, tt.max))
	}
}
