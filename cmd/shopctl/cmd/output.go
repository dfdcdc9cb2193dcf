package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/donaldgifford/shopkeeper/pkg/shopify"
)

const timeLayout = "2006-01-02 15:04:05"

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printProductsTable(w io.Writer, products []shopify.Product) error {
	tw := newTabWriter(w)
	tw.writef("ID\tTITLE\tVENDOR\tTYPE\tSTATUS\tVARIANTS\n")
	for i := range products {
		tw.writef("%d\t%s\t%s\t%s\t%s\t%d\n",
			products[i].ID,
			truncate(products[i].Title, 40),
			products[i].Vendor,
			products[i].ProductType,
			products[i].Status,
			len(products[i].Variants),
		)
	}
	return tw.finish()
}

func printCustomersTable(w io.Writer, customers []shopify.Customer) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tEMAIL\tORDERS\tSPENT\tSTATE\n")
	for i := range customers {
		c := &customers[i]
		tw.writef("%d\t%s\t%s\t%d\t%s\t%s\n",
			c.ID,
			truncate(c.FirstName+" "+c.LastName, 30),
			c.Email,
			c.OrdersCount,
			c.TotalSpent,
			c.State,
		)
	}
	return tw.finish()
}

func printOrdersTable(w io.Writer, orders []shopify.Order) error {
	tw := newTabWriter(w)
	tw.writef("ID\tNAME\tTOTAL\tFINANCIAL\tFULFILLMENT\tCREATED\n")
	for i := range orders {
		o := &orders[i]
		fulfillment := o.FulfillmentStatus
		if fulfillment == "" {
			fulfillment = "-"
		}
		tw.writef("%d\t%s\t%s %s\t%s\t%s\t%s\n",
			o.ID,
			o.Name,
			o.TotalPrice,
			o.Currency,
			o.FinancialStatus,
			fulfillment,
			o.CreatedAt.Format(timeLayout),
		)
	}
	return tw.finish()
}

func printShopDetail(w io.Writer, s *shopify.Shop) error {
	tw := newTabWriter(w)
	tw.writef("ID:\t%d\n", s.ID)
	tw.writef("Name:\t%s\n", s.Name)
	tw.writef("Domain:\t%s\n", s.Domain)
	tw.writef("Myshopify:\t%s\n", s.MyshopifyURL)
	tw.writef("Email:\t%s\n", s.Email)
	tw.writef("Currency:\t%s\n", s.Currency)
	tw.writef("Plan:\t%s\n", s.PlanName)
	return tw.finish()
}

func printTokenDetail(w io.Writer, shop string, t *shopify.AccessToken) error {
	tw := newTabWriter(w)
	tw.writef("Shop:\t%s\n", shop)
	tw.writef("Access Token:\t%s\n", t.Token)
	tw.writef("Scopes:\t%s\n", t.Scopes.String())
	if t.Online() {
		tw.writef("User:\t%s %s <%s>\n",
			t.AssociatedUser.FirstName, t.AssociatedUser.LastName, t.AssociatedUser.Email)
		tw.writef("User Scopes:\t%s\n", t.AssociatedUserScopes.String())
		tw.writef("Expires In:\t%ds\n", t.ExpiresIn)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
