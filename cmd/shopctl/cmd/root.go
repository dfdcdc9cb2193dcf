// Package cmd implements the shopctl CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/donaldgifford/shopkeeper/internal/config"
	"github.com/donaldgifford/shopkeeper/internal/metrics"
	"github.com/donaldgifford/shopkeeper/pkg/logger"
	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

var errNoCredentials = errors.New(
	"no credentials: set --access-token (SHOPCTL_ACCESS_TOKEN) or --api-key and --password",
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Shopify Admin API command-line client",
	Long: "shopctl installs a Shopify app through the OAuth flow and reads\n" +
		"shop, product, customer and order data from the Admin REST API.",
	SilenceUsage: true,
}

// Root returns the root cobra command for documentation generation.
func Root() *cobra.Command {
	return rootCmd
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (YAML)")
	flags.String("shop", "", "shop name or myshopify.com domain")
	flags.String("output", "table", "output format (table, json)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("access-token", "", "OAuth access token")
	flags.String("api-key", "", "private app API key")
	flags.String("password", "", "private app password")

	for _, name := range []string{
		"config", "shop", "output", "log-level", "access-token", "api-key", "password",
	} {
		cobra.CheckErr(viper.BindPFlag(name, flags.Lookup(name)))
	}

	rootCmd.AddCommand(
		authURLCmd(),
		installCmd(),
		verifyCmd(),
		shopCmd(),
		productsCmd(),
		customersCmd(),
		ordersCmd(),
		versionCmd(),
	)
}

func initConfig() {
	viper.SetEnvPrefix("SHOPCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file and applies flag and environment
// overrides on top of it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if shop := viper.GetString("shop"); shop != "" {
		cfg.Shop = shop
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *log.Logger {
	return logger.New(cfg.Logging.Level, cfg.Logging.Format)
}

func newClient(cfg *config.Config, l *log.Logger) *shopify.Client {
	return shopify.NewClient(
		shopify.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		shopify.WithBaseURL(cfg.API.BaseURL),
		shopify.WithUserAgent(cfg.API.UserAgent),
		shopify.WithRateLimiter(shopify.NewRateLimiter(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst)),
		shopify.WithLogger(l),
		shopify.WithObserver(metrics.NewObserver()),
	)
}

// credentials resolves the data-command credentials. A token and a private
// key may both be given; the token is used.
func credentials() (shopify.Credentials, error) {
	var creds shopify.Credentials
	if key := viper.GetString("api-key"); key != "" {
		creds = creds.WithPrivate(shopify.PrivateCredentials{
			APIKey:   key,
			Password: viper.GetString("password"),
		})
	}
	if token := viper.GetString("access-token"); token != "" {
		creds = creds.WithAccessToken(shopify.AccessToken{Token: token})
	}
	if creds.IsZero() {
		return shopify.Credentials{}, errNoCredentials
	}
	return creds, nil
}

func newAdmin(cfg *config.Config) (*shopify.Admin, error) {
	if err := cfg.RequireShop(); err != nil {
		return nil, err
	}
	creds, err := credentials()
	if err != nil {
		return nil, err
	}

	l := newLogger(cfg)
	return shopify.NewAdmin(
		newClient(cfg, l),
		cfg.Shop,
		creds,
		shopify.WithAPIVersion(cfg.API.Version),
		shopify.WithPaginatorOptions(
			shopify.WithFirstPage(cfg.Pagination.StartPage()),
			shopify.WithPageSize(cfg.Pagination.PageSize),
			shopify.WithPageDelay(cfg.Pagination.PageDelay),
			shopify.WithPaginatorLogger(l),
			shopify.WithPaginatorObserver(metrics.NewObserver()),
		),
	), nil
}

func jsonOutput() bool {
	return viper.GetString("output") == "json"
}
