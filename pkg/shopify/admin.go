package shopify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

const defaultAPIVersion = "2024-01"

// Admin is a typed facade over a handful of Admin API resources for one shop.
type Admin struct {
	doer        Doer
	shop        string
	creds       Credentials
	apiVersion  string
	pageOptions []PaginatorOption
}

// AdminOption configures the Admin facade.
type AdminOption func(*Admin)

// WithAPIVersion overrides the Admin API version (default 2024-01).
func WithAPIVersion(v string) AdminOption {
	return func(a *Admin) {
		if v != "" {
			a.apiVersion = v
		}
	}
}

// WithPaginatorOptions applies opts to every paginator the facade returns.
func WithPaginatorOptions(opts ...PaginatorOption) AdminOption {
	return func(a *Admin) {
		a.pageOptions = append(a.pageOptions, opts...)
	}
}

// NewAdmin creates a facade for shop authenticated by creds.
func NewAdmin(doer Doer, shop string, creds Credentials, opts ...AdminOption) *Admin {
	a := &Admin{
		doer:       doer,
		shop:       shop,
		creds:      creds,
		apiVersion: defaultAPIVersion,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Request returns a descriptor for an Admin API resource path such as
// "products/{id}.json", bound to the facade's shop and credentials.
func (a *Admin) Request(method, resourcePath string) RequestDescriptor {
	return NewRequest(method, fmt.Sprintf("/admin/api/%s/%s", a.apiVersion, resourcePath)).
		WithShop(a.shop).
		WithCredentials(a.creds)
}

// Shop fetches the shop the credentials belong to.
func (a *Admin) Shop(ctx context.Context) (*Shop, error) {
	return get[Shop](ctx, a.doer, a.Request(http.MethodGet, "shop.json"), ShopTransformer)
}

// Product fetches one product by id.
func (a *Admin) Product(ctx context.Context, id string) (*Product, error) {
	req := a.Request(http.MethodGet, "products/{id}.json").WithPathParam("id", id)
	return get[Product](ctx, a.doer, req, ProductTransformer)
}

// Products returns a paginator over products matching filters.
func (a *Admin) Products(filters url.Values) *Paginator[Product] {
	return collection[Product](a, "products", filters, ProductTransformer)
}

// Customers returns a paginator over customers matching filters.
func (a *Admin) Customers(filters url.Values) *Paginator[Customer] {
	return collection[Customer](a, "customers", filters, CustomerTransformer)
}

// Orders returns a paginator over orders matching filters.
func (a *Admin) Orders(filters url.Values) *Paginator[Order] {
	return collection[Order](a, "orders", filters, OrderTransformer)
}

func collection[T Record](
	a *Admin,
	resource string,
	filters url.Values,
	transformer Transformer[T],
) *Paginator[T] {
	req := a.Request(http.MethodGet, resource+".json").WithQueryValues(filters)
	opts := append([]PaginatorOption{WithResourceName(resource)}, a.pageOptions...)
	return NewPaginator[T](a.doer, req, transformer, opts...)
}

func get[T any](
	ctx context.Context,
	doer Doer,
	req RequestDescriptor,
	transformer Transformer[T],
) (*T, error) {
	resp, err := doer.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	out, err := transformer.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
