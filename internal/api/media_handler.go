package api

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/mediastore"
	"github.com/olkipaint/backend/internal/storage"
)

const maxImageSize = 5 << 20 // 5 MiB

// extensions by accepted upload content type
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// MediaHandler serves product image upload and media delivery.
type MediaHandler struct {
	queries  storage.Querier
	store    mediastore.Store
	products *ProductHandler
}

// NewMediaHandler creates a MediaHandler. products is used to render the
// updated product after an upload.
func NewMediaHandler(queries storage.Querier, store mediastore.Store, products *ProductHandler) *MediaHandler {
	return &MediaHandler{queries: queries, store: store, products: products}
}

// UploadProductImage handles POST /api/products/{id}/image. The image is
// read from the "image" multipart field, stored under a fresh key, and
// attached to the product.
func (h *MediaHandler) UploadProductImage(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.queries.GetProductByID(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Error().Err(err).Int64("id", id).Msg("get product")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart body or image too large")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		respondError(w, http.StatusBadRequest, "image field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "read image")
		return
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		respondError(w, http.StatusBadRequest, "unsupported image type")
		return
	}

	key := "products/" + uuid.New().String() + ext
	if err := h.store.Put(r.Context(), key, data, contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("store image")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	product, err := h.queries.SetProductImage(r.Context(), storage.SetProductImageParams{
		ID:    id,
		Image: key,
	})
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("set product image")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info().
		Int64("product_id", id).
		Str("key", key).
		Str("filename", header.Filename).
		Int("size", len(data)).
		Msg("product image uploaded")
	respondJSON(w, http.StatusOK, h.products.toResponse(product))
}

// ServeMedia handles GET /media/*, streaming stored objects.
func (h *MediaHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	data, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, mediastore.ErrNotFound) || errors.Is(err, mediastore.ErrInvalidKey) {
			respondError(w, http.StatusNotFound, "not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("key", key).Msg("read media")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Write(data)
}
