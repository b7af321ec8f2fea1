package storage

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the set of database operations used by the API server and the
// notification worker. Handlers and the worker depend on this interface so
// tests can substitute mocks.
type Querier interface {
	// Products
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	GetProductByID(ctx context.Context, id int64) (Product, error)
	ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error)
	CountProducts(ctx context.Context, search string) (int64, error)
	UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error)
	SetProductImage(ctx context.Context, arg SetProductImageParams) (Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	// Contact requests
	CreateContactRequest(ctx context.Context, arg CreateContactRequestParams) (ContactRequest, error)
	GetContactRequestByID(ctx context.Context, id int64) (ContactRequest, error)
	ListContactRequests(ctx context.Context, arg ListContactRequestsParams) ([]ContactRequest, error)
	CountContactRequests(ctx context.Context) (int64, error)
	CountUnprocessedContactRequests(ctx context.Context) (int64, error)
	UpdateContactRequest(ctx context.Context, arg UpdateContactRequestParams) (ContactRequest, error)
	DeleteContactRequest(ctx context.Context, id int64) error
	MarkContactRequestProcessed(ctx context.Context, id int64) error
}

// Queries implements Querier on a pgx connection pool.
type Queries struct {
	pool *pgxpool.Pool
}

// New creates a Queries instance backed by the given pool.
func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

var _ Querier = (*Queries)(nil)
