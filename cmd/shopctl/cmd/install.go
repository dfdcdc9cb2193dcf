package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/shopkeeper/internal/callback"
	"github.com/donaldgifford/shopkeeper/internal/config"
	"github.com/donaldgifford/shopkeeper/internal/metrics"
	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

func authorizeBuilder(cfg *config.Config, nonce string, online bool) shopify.AuthorizationURIBuilder {
	b := shopify.NewAuthorizationURIBuilder().
		WithShop(cfg.Shop).
		WithClientID(cfg.App.ClientID).
		WithScopes(cfg.App.Scopes...).
		WithRedirectURI(cfg.App.RedirectURI).
		WithNonce(nonce)
	if online || cfg.App.OnlineAccess {
		b = b.WithOnlineAccess()
	}
	return b
}

func authURLCmd() *cobra.Command {
	var (
		nonce  string
		online bool
	)

	cmd := &cobra.Command{
		Use:   "auth-url",
		Short: "Print the OAuth authorize URL for a shop",
		Long: "Print the URL a merchant visits to install the app. A random state\n" +
			"nonce is generated unless --nonce is given; keep it to verify the callback.",
		Example: `  # Offline token install URL
  shopctl auth-url --shop acme --config shopctl.yaml

  # Per-user (online) access with a fixed nonce
  shopctl auth-url --shop acme --online --nonce 5f2c`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if nonce == "" {
				nonce = shopify.NewNonce()
			}

			u, err := authorizeBuilder(cfg, nonce, online).URI()
			if err != nil {
				return fmt.Errorf("building authorize URL: %w", err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), map[string]string{
					"url":   u.String(),
					"nonce": nonce,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), u.String())
			fmt.Fprintln(cmd.ErrOrStderr(), "state nonce:", nonce)
			return nil
		},
	}
	cmd.Flags().StringVar(&nonce, "nonce", "", "state nonce (default: random)")
	cmd.Flags().BoolVar(&online, "online", false, "request a per-user (online) token")

	return cmd
}

func installCmd() *cobra.Command {
	var (
		online    bool
		noBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the app on a shop and print the access token",
		Long: "Start a local callback listener, open the authorize URL in a browser,\n" +
			"verify the redirect and exchange its code for an access token.\n" +
			"The redirect URI registered for the app must point at the listener.",
		Example: `  shopctl install --shop acme --config shopctl.yaml
  shopctl install --shop acme --no-browser --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireApp(); err != nil {
				return fmt.Errorf("install: %w", err)
			}

			l := newLogger(cfg)
			nonce := shopify.NewNonce()
			u, err := authorizeBuilder(cfg, nonce, online).URI()
			if err != nil {
				return fmt.Errorf("building authorize URL: %w", err)
			}

			obs := metrics.NewObserver()
			confirmer := shopify.NewInstallationConfirmer(
				newClient(cfg, l),
				shopify.WithSecurityChecker(shopify.NewSecurityChecker(shopify.WithShopDomainCheck())),
				shopify.WithConfirmerLogger(l),
				shopify.WithConfirmerObserver(obs),
			)
			app := shopify.AppCredentials{ClientID: cfg.App.ClientID, ClientSecret: cfg.App.ClientSecret}
			srv := callback.New(confirmer, app, nonce,
				callback.WithPath(cfg.Callback.Path),
				callback.WithLogger(l),
			)

			startErr := make(chan error, 1)
			go func() { startErr <- srv.Start(cfg.Callback.Addr()) }()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(ctx); err != nil {
					l.Warn("callback server shutdown", "err", err)
				}
			}()

			fmt.Fprintln(cmd.ErrOrStderr(), "Open this URL to approve the installation:")
			fmt.Fprintln(cmd.ErrOrStderr(), u.String())
			if !noBrowser {
				if err := browser.OpenURL(u.String()); err != nil {
					l.Warn("could not open browser", "err", err)
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.Callback.Timeout)
			defer cancel()

			var res callback.Result
			select {
			case err := <-startErr:
				if err != nil {
					return err
				}
				return fmt.Errorf("callback server stopped before a callback arrived")
			case r, ok := <-waitResult(ctx, srv):
				if !ok {
					return fmt.Errorf("waiting for OAuth callback: %w", ctx.Err())
				}
				res = r
			}
			if res.Err != nil {
				return fmt.Errorf("installing on %s: %w", res.Shop, res.Err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), res.Token)
			}
			return printTokenDetail(cmd.OutOrStdout(), res.Shop, res.Token)
		},
	}
	cmd.Flags().BoolVar(&online, "online", false, "request a per-user (online) token")
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the URL without opening a browser")

	return cmd
}

// waitResult adapts Server.Wait to a channel so it can be selected against
// the listener's exit. The channel is closed without a value when ctx ends.
func waitResult(ctx context.Context, srv *callback.Server) <-chan callback.Result {
	ch := make(chan callback.Result, 1)
	go func() {
		defer close(ch)
		if r, err := srv.Wait(ctx); err == nil {
			ch <- r
		}
	}()
	return ch
}

func verifyCmd() *cobra.Command {
	var (
		nonce     string
		maxAge    time.Duration
		checkShop bool
	)

	cmd := &cobra.Command{
		Use:   "verify <callback-url>",
		Short: "Verify the signature and state of a callback URL",
		Long: "Check a redirect URL offline against the app's client secret and the\n" +
			"nonce sent in the authorize URL. No request is made to Shopify.",
		Example: `  shopctl verify --nonce 5f2c 'https://app.example.com/auth/callback?code=...&hmac=...'`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.App.ClientSecret == "" {
				return fmt.Errorf("verify: app.client_secret is required")
			}

			cb, err := shopify.ParseCallbackURL(args[0])
			if err != nil {
				return err
			}

			opts := []shopify.SecurityOption{shopify.WithMaxCallbackAge(maxAge)}
			if checkShop {
				opts = append(opts, shopify.WithShopDomainCheck())
			}
			if err := shopify.NewSecurityChecker(opts...).Verify(cb, cfg.App.ClientSecret, nonce); err != nil {
				return err
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), map[string]any{
					"valid": true,
					"shop":  cb.Shop,
					"code":  cb.Code,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Callback verified for %s\n", cb.Shop)
			return nil
		},
	}
	cmd.Flags().StringVar(&nonce, "nonce", "", "state nonce sent in the authorize URL")
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "reject callbacks older than this (0 disables)")
	cmd.Flags().BoolVar(&checkShop, "check-shop", true, "require a myshopify.com shop parameter")
	cobra.CheckErr(cmd.MarkFlagRequired("nonce"))

	return cmd
}
