package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/olkipaint/backend/internal/auth"
	"github.com/olkipaint/backend/internal/mediastore"
	"github.com/olkipaint/backend/internal/queue"
	"github.com/olkipaint/backend/internal/storage"
)

// mockQuerier implements storage.Querier with function fields so each test
// wires only the calls it expects. Unexpected calls panic.
type mockQuerier struct {
	createProductFn   func(ctx context.Context, arg storage.CreateProductParams) (storage.Product, error)
	getProductFn      func(ctx context.Context, id int64) (storage.Product, error)
	listProductsFn    func(ctx context.Context, arg storage.ListProductsParams) ([]storage.Product, error)
	countProductsFn   func(ctx context.Context, search string) (int64, error)
	updateProductFn   func(ctx context.Context, arg storage.UpdateProductParams) (storage.Product, error)
	setProductImageFn func(ctx context.Context, arg storage.SetProductImageParams) (storage.Product, error)
	deleteProductFn   func(ctx context.Context, id int64) error

	createContactFn     func(ctx context.Context, arg storage.CreateContactRequestParams) (storage.ContactRequest, error)
	getContactFn        func(ctx context.Context, id int64) (storage.ContactRequest, error)
	listContactsFn      func(ctx context.Context, arg storage.ListContactRequestsParams) ([]storage.ContactRequest, error)
	countContactsFn     func(ctx context.Context) (int64, error)
	countUnprocessedFn  func(ctx context.Context) (int64, error)
	updateContactFn     func(ctx context.Context, arg storage.UpdateContactRequestParams) (storage.ContactRequest, error)
	deleteContactFn     func(ctx context.Context, id int64) error
	markProcessedFn     func(ctx context.Context, id int64) error
}

var _ storage.Querier = (*mockQuerier)(nil)

func (m *mockQuerier) CreateProduct(ctx context.Context, arg storage.CreateProductParams) (storage.Product, error) {
	if m.createProductFn == nil {
		panic("unexpected CreateProduct call")
	}
	return m.createProductFn(ctx, arg)
}

func (m *mockQuerier) GetProductByID(ctx context.Context, id int64) (storage.Product, error) {
	if m.getProductFn == nil {
		panic("unexpected GetProductByID call")
	}
	return m.getProductFn(ctx, id)
}

func (m *mockQuerier) ListProducts(ctx context.Context, arg storage.ListProductsParams) ([]storage.Product, error) {
	if m.listProductsFn == nil {
		panic("unexpected ListProducts call")
	}
	return m.listProductsFn(ctx, arg)
}

func (m *mockQuerier) CountProducts(ctx context.Context, search string) (int64, error) {
	if m.countProductsFn == nil {
		panic("unexpected CountProducts call")
	}
	return m.countProductsFn(ctx, search)
}

func (m *mockQuerier) UpdateProduct(ctx context.Context, arg storage.UpdateProductParams) (storage.Product, error) {
	if m.updateProductFn == nil {
		panic("unexpected UpdateProduct call")
	}
	return m.updateProductFn(ctx, arg)
}

func (m *mockQuerier) SetProductImage(ctx context.Context, arg storage.SetProductImageParams) (storage.Product, error) {
	if m.setProductImageFn == nil {
		panic("unexpected SetProductImage call")
	}
	return m.setProductImageFn(ctx, arg)
}

func (m *mockQuerier) DeleteProduct(ctx context.Context, id int64) error {
	if m.deleteProductFn == nil {
		panic("unexpected DeleteProduct call")
	}
	return m.deleteProductFn(ctx, id)
}

func (m *mockQuerier) CreateContactRequest(ctx context.Context, arg storage.CreateContactRequestParams) (storage.ContactRequest, error) {
	if m.createContactFn == nil {
		panic("unexpected CreateContactRequest call")
	}
	return m.createContactFn(ctx, arg)
}

func (m *mockQuerier) GetContactRequestByID(ctx context.Context, id int64) (storage.ContactRequest, error) {
	if m.getContactFn == nil {
		panic("unexpected GetContactRequestByID call")
	}
	return m.getContactFn(ctx, id)
}

func (m *mockQuerier) ListContactRequests(ctx context.Context, arg storage.ListContactRequestsParams) ([]storage.ContactRequest, error) {
	if m.listContactsFn == nil {
		panic("unexpected ListContactRequests call")
	}
	return m.listContactsFn(ctx, arg)
}

func (m *mockQuerier) CountContactRequests(ctx context.Context) (int64, error) {
	if m.countContactsFn == nil {
		panic("unexpected CountContactRequests call")
	}
	return m.countContactsFn(ctx)
}

func (m *mockQuerier) CountUnprocessedContactRequests(ctx context.Context) (int64, error) {
	if m.countUnprocessedFn == nil {
		panic("unexpected CountUnprocessedContactRequests call")
	}
	return m.countUnprocessedFn(ctx)
}

func (m *mockQuerier) UpdateContactRequest(ctx context.Context, arg storage.UpdateContactRequestParams) (storage.ContactRequest, error) {
	if m.updateContactFn == nil {
		panic("unexpected UpdateContactRequest call")
	}
	return m.updateContactFn(ctx, arg)
}

func (m *mockQuerier) DeleteContactRequest(ctx context.Context, id int64) error {
	if m.deleteContactFn == nil {
		panic("unexpected DeleteContactRequest call")
	}
	return m.deleteContactFn(ctx, id)
}

func (m *mockQuerier) MarkContactRequestProcessed(ctx context.Context, id int64) error {
	if m.markProcessedFn == nil {
		panic("unexpected MarkContactRequestProcessed call")
	}
	return m.markProcessedFn(ctx, id)
}

// mockPublisher records published events and optionally fails.
type mockPublisher struct {
	published []*queue.NotificationEvent
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, ev *queue.NotificationEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, ev)
	return nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

const testSigningKey = "test-signing-key"

// newTestRouter builds the full router around the given mocks, with a local
// media store in a temp dir and rate limiting disabled.
func newTestRouter(t *testing.T, q storage.Querier, pub EventPublisher) http.Handler {
	t.Helper()

	media, err := mediastore.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("create media store: %v", err)
	}

	hash, err := auth.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	return NewRouter(RouterConfig{
		Queries:      q,
		DB:           &mockPinger{},
		Publisher:    pub,
		Media:        media,
		MediaBaseURL: "/media",
		JWT: auth.NewJWTService(auth.JWTConfig{
			SigningKey:  testSigningKey,
			TokenExpiry: time.Hour,
			Issuer:      "test",
		}),
		Admin:   auth.AdminConfig{Username: "admin", PasswordHash: hash},
		Limiter: auth.NewRateLimiter(nil, auth.RateLimitConfig{}),
		Logger:  zerolog.Nop(),
	})
}

func testTimestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{
		Time:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Valid: true,
	}
}

func testProduct(id int64) storage.Product {
	return storage.Product{
		ID:          id,
		Name:        fmt.Sprintf("Краска фасадная %d", id),
		Description: "Акриловая краска для наружных работ",
		Price:       "1250.00",
		CreatedAt:   testTimestamp(),
		UpdatedAt:   testTimestamp(),
	}
}

func testContact(id int64) storage.ContactRequest {
	return storage.ContactRequest{
		ID:        id,
		Name:      "Анна",
		Email:     "anna@example.com",
		Phone:     "+7 900 000-00-00",
		Message:   "Интересует фасадная краска",
		CreatedAt: testTimestamp(),
	}
}
