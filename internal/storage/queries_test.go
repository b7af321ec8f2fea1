//go:build integration

package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"

	"github.com/olkipaint/backend/internal/storage"
)

func TestProductCRUD(t *testing.T) {
	queries := setupTestDB(t)
	ctx := context.Background()

	created, err := queries.CreateProduct(ctx, storage.CreateProductParams{
		Name:        "Краска фасадная",
		Description: "Акриловая краска для наружных работ",
		Price:       "1250.00",
	})
	if err != nil {
		t.Fatalf("CreateProduct() = %v", err)
	}
	if created.ID == 0 {
		t.Fatal("created product has no id")
	}
	if created.Price != "1250.00" {
		t.Errorf("price = %q, want exact decimal string 1250.00", created.Price)
	}
	if created.Image.Valid {
		t.Error("new product has an image")
	}

	got, err := queries.GetProductByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetProductByID() = %v", err)
	}
	if got.Name != created.Name {
		t.Errorf("name = %q, want %q", got.Name, created.Name)
	}

	updated, err := queries.UpdateProduct(ctx, storage.UpdateProductParams{
		ID:          created.ID,
		Name:        "Краска интерьерная",
		Description: got.Description,
		Price:       "990.50",
	})
	if err != nil {
		t.Fatalf("UpdateProduct() = %v", err)
	}
	if updated.Price != "990.50" {
		t.Errorf("price = %q, want 990.50", updated.Price)
	}
	if updated.UpdatedAt.Time.Before(created.UpdatedAt.Time) {
		t.Error("updated_at moved backwards")
	}

	withImage, err := queries.SetProductImage(ctx, storage.SetProductImageParams{
		ID:    created.ID,
		Image: "products/abc.png",
	})
	if err != nil {
		t.Fatalf("SetProductImage() = %v", err)
	}
	if !withImage.Image.Valid || withImage.Image.String != "products/abc.png" {
		t.Errorf("image = %+v, want products/abc.png", withImage.Image)
	}

	if err := queries.DeleteProduct(ctx, created.ID); err != nil {
		t.Fatalf("DeleteProduct() = %v", err)
	}
	if _, err := queries.GetProductByID(ctx, created.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("GetProductByID() after delete = %v, want pgx.ErrNoRows", err)
	}
}

func TestListProductsSearchAndOrder(t *testing.T) {
	queries := setupTestDB(t)
	ctx := context.Background()

	names := []string{"Грунтовка", "Краска фасадная", "Краска интерьерная"}
	for _, name := range names {
		if _, err := queries.CreateProduct(ctx, storage.CreateProductParams{
			Name:  name,
			Price: "100.00",
		}); err != nil {
			t.Fatalf("CreateProduct(%s) = %v", name, err)
		}
	}

	all, err := queries.ListProducts(ctx, storage.ListProductsParams{Limit: 10})
	if err != nil {
		t.Fatalf("ListProducts() = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Newest first; ties on created_at break by id descending.
	if all[0].ID < all[1].ID || all[1].ID < all[2].ID {
		t.Errorf("order = %d, %d, %d, want descending", all[0].ID, all[1].ID, all[2].ID)
	}

	// Case-insensitive substring match.
	matched, err := queries.ListProducts(ctx, storage.ListProductsParams{Search: "краска", Limit: 10})
	if err != nil {
		t.Fatalf("ListProducts(search) = %v", err)
	}
	if len(matched) != 2 {
		t.Errorf("search matched %d, want 2", len(matched))
	}

	count, err := queries.CountProducts(ctx, "краска")
	if err != nil {
		t.Fatalf("CountProducts() = %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestListProductsPagination(t *testing.T) {
	queries := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := queries.CreateProduct(ctx, storage.CreateProductParams{
			Name:  fmt.Sprintf("Краска %d", i),
			Price: "100.00",
		}); err != nil {
			t.Fatalf("CreateProduct() = %v", err)
		}
	}

	page1, err := queries.ListProducts(ctx, storage.ListProductsParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListProducts(page 1) = %v", err)
	}
	page2, err := queries.ListProducts(ctx, storage.ListProductsParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("ListProducts(page 2) = %v", err)
	}

	if len(page1) != 2 || len(page2) != 2 {
		t.Fatalf("page sizes = %d, %d, want 2 and 2", len(page1), len(page2))
	}
	if page1[1].ID <= page2[0].ID {
		t.Error("pages overlap or are out of order")
	}
}

func TestContactRequestCRUD(t *testing.T) {
	queries := setupTestDB(t)
	ctx := context.Background()

	created, err := queries.CreateContactRequest(ctx, storage.CreateContactRequestParams{
		Name:  "Анна",
		Email: "anna@example.com",
	})
	if err != nil {
		t.Fatalf("CreateContactRequest() = %v", err)
	}
	if created.Processed {
		t.Error("new contact request is already processed")
	}
	if created.Phone != "" || created.Message != "" {
		t.Errorf("optional fields = %q, %q, want empty defaults", created.Phone, created.Message)
	}

	updated, err := queries.UpdateContactRequest(ctx, storage.UpdateContactRequestParams{
		ID:      created.ID,
		Name:    created.Name,
		Email:   created.Email,
		Phone:   "+7 900 000-00-00",
		Message: "Интересует краска",
	})
	if err != nil {
		t.Fatalf("UpdateContactRequest() = %v", err)
	}
	if updated.Phone != "+7 900 000-00-00" {
		t.Errorf("phone = %q", updated.Phone)
	}

	if err := queries.DeleteContactRequest(ctx, created.ID); err != nil {
		t.Fatalf("DeleteContactRequest() = %v", err)
	}
	if _, err := queries.GetContactRequestByID(ctx, created.ID); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("GetContactRequestByID() after delete = %v, want pgx.ErrNoRows", err)
	}
}

func TestMarkContactRequestProcessed(t *testing.T) {
	queries := setupTestDB(t)
	ctx := context.Background()

	created, err := queries.CreateContactRequest(ctx, storage.CreateContactRequestParams{
		Name:  "Анна",
		Email: "anna@example.com",
	})
	if err != nil {
		t.Fatalf("CreateContactRequest() = %v", err)
	}

	if err := queries.MarkContactRequestProcessed(ctx, created.ID); err != nil {
		t.Fatalf("MarkContactRequestProcessed() = %v", err)
	}

	got, err := queries.GetContactRequestByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetContactRequestByID() = %v", err)
	}
	if !got.Processed {
		t.Error("processed flag not set")
	}

	// Marking twice is idempotent.
	if err := queries.MarkContactRequestProcessed(ctx, created.ID); err != nil {
		t.Fatalf("second MarkContactRequestProcessed() = %v", err)
	}

	// A missing record reports pgx.ErrNoRows so the worker can log and ack.
	if err := queries.MarkContactRequestProcessed(ctx, 999999); !errors.Is(err, pgx.ErrNoRows) {
		t.Fatalf("MarkContactRequestProcessed(missing) = %v, want pgx.ErrNoRows", err)
	}
}

func TestCountContactRequests(t *testing.T) {
	queries := setupTestDB(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		cr, err := queries.CreateContactRequest(ctx, storage.CreateContactRequestParams{
			Name:  "Анна",
			Email: "anna@example.com",
		})
		if err != nil {
			t.Fatalf("CreateContactRequest() = %v", err)
		}
		ids = append(ids, cr.ID)
	}

	if err := queries.MarkContactRequestProcessed(ctx, ids[0]); err != nil {
		t.Fatalf("MarkContactRequestProcessed() = %v", err)
	}

	total, err := queries.CountContactRequests(ctx)
	if err != nil {
		t.Fatalf("CountContactRequests() = %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}

	unprocessed, err := queries.CountUnprocessedContactRequests(ctx)
	if err != nil {
		t.Fatalf("CountUnprocessedContactRequests() = %v", err)
	}
	if unprocessed != 2 {
		t.Errorf("unprocessed = %d, want 2", unprocessed)
	}
}
