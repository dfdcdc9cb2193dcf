package cmd

import (
	"fmt"
	"io"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

func shopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shop",
		Short: "Show the shop the credentials belong to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			admin, err := newAdmin(cfg)
			if err != nil {
				return err
			}

			shop, err := admin.Shop(cmd.Context())
			if err != nil {
				return fmt.Errorf("fetching shop: %w", err)
			}

			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), shop)
			}
			return printShopDetail(cmd.OutOrStdout(), shop)
		},
	}
}

func productsCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "products",
		Short: "Query products",
	}
	root.AddCommand(listCmd(
		"products",
		(*shopify.Admin).Products,
		printProductsTable,
		`  # Every active product
  shopctl products list --status active

  # The first 10 products from one vendor
  shopctl products list --max 10 --filter vendor=Acme`,
	))
	return root
}

func customersCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "customers",
		Short: "Query customers",
	}
	root.AddCommand(listCmd(
		"customers",
		(*shopify.Admin).Customers,
		printCustomersTable,
		`  shopctl customers list --max 25`,
	))
	return root
}

func ordersCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "orders",
		Short: "Query orders",
	}
	root.AddCommand(listCmd(
		"orders",
		(*shopify.Admin).Orders,
		printOrdersTable,
		`  # Orders in any state, including archived
  shopctl orders list --status any

  # Unfulfilled orders as JSON
  shopctl orders list --filter fulfillment_status=unfulfilled --output json`,
	))
	return root
}

// listCmd builds a "list" subcommand that walks a collection page by page.
func listCmd[T shopify.Record](
	resource string,
	paginate func(*shopify.Admin, url.Values) *shopify.Paginator[T],
	printTable func(io.Writer, []T) error,
	example string,
) *cobra.Command {
	var (
		status     string
		maxRecords int
		filters    map[string]string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List " + resource,
		Long:    "List " + resource + " page by page until the collection is exhausted or --max is reached.",
		Example: example,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			admin, err := newAdmin(cfg)
			if err != nil {
				return err
			}

			q := url.Values{}
			for k, v := range filters {
				q.Set(k, v)
			}
			if status != "" {
				q.Set("status", status)
			}

			var records []T
			for rec, err := range paginate(admin, q).All(cmd.Context()) {
				if err != nil {
					return fmt.Errorf("listing %s: %w", resource, err)
				}
				records = append(records, rec)
				if maxRecords > 0 && len(records) >= maxRecords {
					break
				}
			}

			if jsonOutput() {
				if records == nil {
					records = []T{}
				}
				return outputJSON(cmd.OutOrStdout(), records)
			}
			if len(records) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s found.\n", resource)
				return nil
			}
			return printTable(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	cmd.Flags().IntVar(&maxRecords, "max", 0, "stop after this many records (0 for all)")
	cmd.Flags().StringToStringVar(&filters, "filter", nil, "extra query filters (key=value)")

	return cmd
}
