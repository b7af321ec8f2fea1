package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/olkipaint/backend/internal/storage"
)

func TestListProducts(t *testing.T) {
	q := &mockQuerier{
		countProductsFn: func(_ context.Context, search string) (int64, error) {
			if search != "" {
				t.Errorf("search = %q, want empty", search)
			}
			return 2, nil
		},
		listProductsFn: func(_ context.Context, arg storage.ListProductsParams) ([]storage.Product, error) {
			if arg.Limit != 20 || arg.Offset != 0 {
				t.Errorf("limit = %d, offset = %d, want 20, 0", arg.Limit, arg.Offset)
			}
			return []storage.Product{testProduct(2), testProduct(1)}, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Count   int64             `json:"count"`
		Results []json.RawMessage `json:"results"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 || len(resp.Results) != 2 {
		t.Errorf("count = %d, results = %d, want 2 and 2", resp.Count, len(resp.Results))
	}
}

func TestListProductsPassesSearchAndPage(t *testing.T) {
	q := &mockQuerier{
		countProductsFn: func(_ context.Context, search string) (int64, error) {
			if search != "фасад" {
				t.Errorf("search = %q, want фасад", search)
			}
			return 21, nil
		},
		listProductsFn: func(_ context.Context, arg storage.ListProductsParams) ([]storage.Product, error) {
			if arg.Search != "фасад" {
				t.Errorf("search = %q, want фасад", arg.Search)
			}
			if arg.Offset != 20 {
				t.Errorf("offset = %d, want 20 for page 2", arg.Offset)
			}
			return []storage.Product{testProduct(21)}, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/?search=%D1%84%D0%B0%D1%81%D0%B0%D0%B4&page=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestListProductsRejectsBadPage(t *testing.T) {
	router := newTestRouter(t, &mockQuerier{}, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/?page=zero", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestFeaturedProductsLimit(t *testing.T) {
	q := &mockQuerier{
		listProductsFn: func(_ context.Context, arg storage.ListProductsParams) ([]storage.Product, error) {
			if arg.Limit != 3 {
				t.Errorf("limit = %d, want 3", arg.Limit)
			}
			return []storage.Product{testProduct(3), testProduct(2), testProduct(1)}, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/featured/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var results []json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("results = %d, want 3", len(results))
	}
}

func TestFeaturedProductsAppliesSearch(t *testing.T) {
	q := &mockQuerier{
		listProductsFn: func(_ context.Context, arg storage.ListProductsParams) ([]storage.Product, error) {
			if arg.Search != "краска" {
				t.Errorf("search = %q, want краска", arg.Search)
			}
			if arg.Limit != 3 {
				t.Errorf("limit = %d, want 3", arg.Limit)
			}
			return []storage.Product{testProduct(1)}, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/featured/?search=%D0%BA%D1%80%D0%B0%D1%81%D0%BA%D0%B0", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestGetProduct(t *testing.T) {
	q := &mockQuerier{
		getProductFn: func(_ context.Context, id int64) (storage.Product, error) {
			p := testProduct(id)
			p.Image = pgtype.Text{String: "products/abc.jpg", Valid: true}
			return p, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/7/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp productResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != 7 {
		t.Errorf("id = %d, want 7", resp.ID)
	}
	if resp.Price != "1250.00" {
		t.Errorf("price = %q, want decimal string 1250.00", resp.Price)
	}
	if resp.ImageURL == nil || *resp.ImageURL != "/media/products/abc.jpg" {
		t.Errorf("image_url = %v, want /media/products/abc.jpg", resp.ImageURL)
	}
}

func TestGetProductNotFound(t *testing.T) {
	q := &mockQuerier{
		getProductFn: func(context.Context, int64) (storage.Product, error) {
			return storage.Product{}, pgx.ErrNoRows
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/999/", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateProduct(t *testing.T) {
	q := &mockQuerier{
		createProductFn: func(_ context.Context, arg storage.CreateProductParams) (storage.Product, error) {
			if arg.Price != "990.50" {
				t.Errorf("price = %q, want 990.50", arg.Price)
			}
			p := testProduct(1)
			p.Name = arg.Name
			p.Price = arg.Price
			return p, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	body := `{"name": "Грунтовка", "description": "Глубокого проникновения", "price": "990.50"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products/", strings.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}
}

func TestCreateProductValidation(t *testing.T) {
	router := newTestRouter(t, &mockQuerier{}, &mockPublisher{})

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"price": "10.00"}`},
		{"missing price", `{"name": "Краска"}`},
		{"non-numeric price", `{"name": "Краска", "price": "дорого"}`},
		{"negative price", `{"name": "Краска", "price": "-5.00"}`},
		{"malformed json", `{"name": `},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products/", strings.NewReader(tt.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestPatchProductKeepsAbsentFields(t *testing.T) {
	q := &mockQuerier{
		getProductFn: func(_ context.Context, id int64) (storage.Product, error) {
			return testProduct(id), nil
		},
		updateProductFn: func(_ context.Context, arg storage.UpdateProductParams) (storage.Product, error) {
			if arg.Name != "Краска фасадная 4" {
				t.Errorf("name = %q, want stored value kept", arg.Name)
			}
			if arg.Price != "1499.00" {
				t.Errorf("price = %q, want 1499.00", arg.Price)
			}
			p := testProduct(arg.ID)
			p.Price = arg.Price
			return p, nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/products/4/", strings.NewReader(`{"price": "1499.00"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteProduct(t *testing.T) {
	deleted := false
	q := &mockQuerier{
		getProductFn: func(_ context.Context, id int64) (storage.Product, error) {
			return testProduct(id), nil
		},
		deleteProductFn: func(_ context.Context, id int64) error {
			deleted = true
			return nil
		},
	}
	router := newTestRouter(t, q, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/products/4/", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !deleted {
		t.Error("DeleteProduct was not called")
	}
}

func TestProductInvalidID(t *testing.T) {
	router := newTestRouter(t, &mockQuerier{}, &mockPublisher{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products/abc/", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
