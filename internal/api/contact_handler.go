package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/olkipaint/backend/internal/auth"
	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/queue"
	"github.com/olkipaint/backend/internal/storage"
)

const (
	contactPageSize = 20

	contactCreatedMessage = "Спасибо за ваш запрос! Мы свяжемся с вами в ближайшее время."
)

// EventPublisher publishes notification events for new contact requests.
type EventPublisher interface {
	Publish(ctx context.Context, ev *queue.NotificationEvent) error
}

// ContactHandler serves the contact request endpoints.
type ContactHandler struct {
	queries   storage.Querier
	publisher EventPublisher
	limiter   *auth.RateLimiter
}

// NewContactHandler creates a ContactHandler.
func NewContactHandler(queries storage.Querier, publisher EventPublisher, limiter *auth.RateLimiter) *ContactHandler {
	return &ContactHandler{queries: queries, publisher: publisher, limiter: limiter}
}

type contactResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

func toContactResponse(cr storage.ContactRequest) contactResponse {
	return contactResponse{
		ID:        cr.ID,
		Name:      cr.Name,
		Email:     cr.Email,
		Phone:     cr.Phone,
		Message:   cr.Message,
		CreatedAt: formatTime(cr.CreatedAt),
	}
}

type contactRequestBody struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (b *contactRequestBody) validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(b.Email) == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(b.Email); err != nil {
		return errors.New("email is invalid")
	}
	return nil
}

// Create handles POST /api/contacts. The row is committed before the
// notification event is published; a publish failure is logged and the
// request still succeeds, leaving the row unprocessed for later pickup.
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var body contactRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	ip := clientIP(r)
	if err := h.limiter.CheckContactRateLimit(r.Context(), ip); err != nil {
		log.Warn().Str("client_ip", ip).Msg("contact request rate limited")
		respondError(w, http.StatusTooManyRequests, "too many contact requests, try again later")
		return
	}

	cr, err := h.queries.CreateContactRequest(r.Context(), storage.CreateContactRequestParams{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Message: body.Message,
	})
	if err != nil {
		log.Error().Err(err).Msg("create contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.limiter.RecordContactRequest(r.Context(), ip); err != nil {
		log.Warn().Err(err).Msg("record contact rate limit")
	}

	ev := &queue.NotificationEvent{
		ContactRequestID: cr.ID,
		Name:             cr.Name,
		Email:            cr.Email,
		Phone:            cr.Phone,
		Message:          cr.Message,
	}
	if err := h.publisher.Publish(r.Context(), ev); err != nil {
		log.Error().Err(err).
			Int64("contact_request_id", cr.ID).
			Msg("publish notification event failed, request kept unprocessed")
	}

	log.Info().
		Int64("contact_request_id", cr.ID).
		Str("email", cr.Email).
		Msg("contact request created")

	respondJSON(w, http.StatusCreated, map[string]any{
		"message": contactCreatedMessage,
		"data":    toContactResponse(cr),
	})
}

// List handles GET /api/contacts with ?page= pagination.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid page")
			return
		}
		page = n
	}

	count, err := h.queries.CountContactRequests(r.Context())
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("count contact requests")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	requests, err := h.queries.ListContactRequests(r.Context(), storage.ListContactRequestsParams{
		Limit:  contactPageSize,
		Offset: int32((page - 1) * contactPageSize),
	})
	if err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("list contact requests")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	results := make([]contactResponse, 0, len(requests))
	for _, cr := range requests {
		results = append(results, toContactResponse(cr))
	}
	respondJSON(w, http.StatusOK, pagedResponse{Count: count, Results: results})
}

// Get handles GET /api/contacts/{id}.
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	cr, err := h.queries.GetContactRequestByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "contact request not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("get contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toContactResponse(cr))
}

// Update handles PUT /api/contacts/{id}, replacing all client fields.
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var body contactRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := body.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cr, err := h.queries.UpdateContactRequest(r.Context(), storage.UpdateContactRequestParams{
		ID:      id,
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Message: body.Message,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "contact request not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("update contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toContactResponse(cr))
}

type contactPatchBody struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Message *string `json:"message"`
}

// Patch handles PATCH /api/contacts/{id}. Absent fields keep their stored
// values.
func (h *ContactHandler) Patch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var body contactPatchBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := h.queries.GetContactRequestByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "contact request not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("get contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	merged := contactRequestBody{
		Name:    current.Name,
		Email:   current.Email,
		Phone:   current.Phone,
		Message: current.Message,
	}
	if body.Name != nil {
		merged.Name = *body.Name
	}
	if body.Email != nil {
		merged.Email = *body.Email
	}
	if body.Phone != nil {
		merged.Phone = *body.Phone
	}
	if body.Message != nil {
		merged.Message = *body.Message
	}
	if err := merged.validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cr, err := h.queries.UpdateContactRequest(r.Context(), storage.UpdateContactRequestParams{
		ID:      id,
		Name:    merged.Name,
		Email:   merged.Email,
		Phone:   merged.Phone,
		Message: merged.Message,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "contact request not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("update contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, toContactResponse(cr))
}

// Delete handles DELETE /api/contacts/{id}.
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if _, err := h.queries.GetContactRequestByID(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "contact request not found")
			return
		}
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("get contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.queries.DeleteContactRequest(r.Context(), id); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Int64("id", id).Msg("delete contact request")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// clientIP returns the requesting client address, honoring the first entry
// of X-Forwarded-For when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
