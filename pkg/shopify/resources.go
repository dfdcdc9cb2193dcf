package shopify

import (
	"strconv"
	"time"
)

// AssociatedUser is the staff member an online access token was issued for.
type AssociatedUser struct {
	ID            int64  `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	AccountOwner  bool   `json:"account_owner"`
	Locale        string `json:"locale"`
	Collaborator  bool   `json:"collaborator"`
}

// Shop is the store the credentials belong to.
type Shop struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Domain       string    `json:"domain"`
	MyshopifyURL string    `json:"myshopify_domain"`
	Currency     string    `json:"currency"`
	PlanName     string    `json:"plan_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// RecordID implements Record.
func (s Shop) RecordID() string { return strconv.FormatInt(s.ID, 10) }

// Product is a catalog product.
type Product struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Handle      string           `json:"handle"`
	Status      string           `json:"status"`
	Tags        string           `json:"tags"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// RecordID implements Record.
func (p Product) RecordID() string { return strconv.FormatInt(p.ID, 10) }

// ProductVariant is one purchasable variant of a product.
type ProductVariant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Customer is a shop customer.
type Customer struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	OrdersCount int       `json:"orders_count"`
	TotalSpent  string    `json:"total_spent"`
	State       string    `json:"state"`
	CreatedAt   time.Time `json:"created_at"`
}

// RecordID implements Record.
func (c Customer) RecordID() string { return strconv.FormatInt(c.ID, 10) }

// Order is a placed order.
type Order struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Currency          string    `json:"currency"`
	TotalPrice        string    `json:"total_price"`
	FinancialStatus   string    `json:"financial_status"`
	FulfillmentStatus string    `json:"fulfillment_status"`
	CreatedAt         time.Time `json:"created_at"`
}

// RecordID implements Record.
func (o Order) RecordID() string { return strconv.FormatInt(o.ID, 10) }

// Transformers for the bundled resources.
var (
	ShopTransformer     = NewJSONTransformer[Shop]("shop", "shops")
	ProductTransformer  = NewJSONTransformer[Product]("product", "products")
	CustomerTransformer = NewJSONTransformer[Customer]("customer", "customers")
	OrderTransformer    = NewJSONTransformer[Order]("order", "orders")
)
