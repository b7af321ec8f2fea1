package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/storage"
)

const (
	productPageSize  = 20
	featuredProducts = 3
)

// ProductHandler serves the product catalog endpoints.
type ProductHandler struct {
	queries      storage.Querier
	mediaBaseURL string
}

// NewProductHandler creates a ProductHandler. mediaBaseURL prefixes stored
// image keys when building public image URLs.
func NewProductHandler(queries storage.Querier, mediaBaseURL string) *ProductHandler {
	return &ProductHandler{queries: queries, mediaBaseURL: mediaBaseURL}
}

type productResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       string  `json:"price"`
	Image       *string `json:"image"`
	ImageURL    *string `json:"image_url"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (h *ProductHandler) toResponse(p storage.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CreatedAt:   formatTime(p.CreatedAt),
		UpdatedAt:   formatTime(p.UpdatedAt),
	}
	if p.Image.Valid && p.Image.String != "" {
		key := p.Image.String
		url := strings.TrimSuffix(h.mediaBaseURL, "/") + "/" + key
		resp.Image = &key
		resp.ImageURL = &url
	}
	return resp
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

func (r *productRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	return validatePrice(r.Price)
}

func validatePrice(price string) error {
	if price == "" {
		return errors.New("price is required")
	}
	v, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return errors.New("price must be a decimal number")
	}
	if v < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

// List handles GET /api/products. Supports ?search= name filtering and
// ?page= pagination with a fixed page size.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	count, err := h.queries.CountProducts(r.Context(), search)
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("count products")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	products, err := h.queries.ListProducts(r.Context(), storage.ListProductsParams{
		Search: search,
		Limit:  productPageSize,
		Offset: int32((page - 1) * productPageSize),
	})
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("list products")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, h.toResponse(p))
	}
	respondJSON(w, http.StatusOK, pagedResponse{Count: count, Results: results})
}

// Featured handles GET /api/products/featured, returning the newest products.
// The same ?search= filter as the main listing applies.
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	products, err := h.queries.ListProducts(r.Context(), storage.ListProductsParams{
		Search: r.URL.Query().Get("search"),
		Limit:  featuredProducts,
	})
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("list featured products")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]productResponse, 0, len(products))
	for _, p := range products {
		results = append(results, h.toResponse(p))
	}
	respondJSON(w, http.StatusOK, results)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	product, err := h.queries.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("get product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, h.toResponse(product))
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.queries.CreateProduct(r.Context(), storage.CreateProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("create product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log := logger.FromContext(r.Context())
	log.Info().
		Int64("product_id", product.ID).
		Str("name", product.Name).
		Msg("product created")
	respondJSON(w, http.StatusCreated, h.toResponse(product))
}

// Update handles PUT /api/products/{id}, replacing all mutable fields.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.queries.UpdateProduct(r.Context(), storage.UpdateProductParams{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("update product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, h.toResponse(product))
}

type productPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
}

// Patch handles PATCH /api/products/{id}. Absent fields keep their stored
// values.
func (h *ProductHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req productPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.queries.GetProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("get product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	params := storage.UpdateProductParams{
		ID:          id,
		Name:        current.Name,
		Description: current.Description,
		Price:       current.Price,
	}
	if req.Name != nil {
		params.Name = *req.Name
	}
	if req.Description != nil {
		params.Description = *req.Description
	}
	if req.Price != nil {
		params.Price = *req.Price
	}

	if strings.TrimSpace(params.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := validatePrice(params.Price); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.queries.UpdateProduct(r.Context(), params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("update product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, h.toResponse(product))
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.queries.GetProductByID(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("get product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.queries.DeleteProduct(r.Context(), id); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("delete product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseID extracts the {id} path parameter. On failure it writes a 400
// response and returns ok=false.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		respondError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
