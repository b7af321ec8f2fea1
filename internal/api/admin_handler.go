package api

import (
	"encoding/json"
	"net/http"

	"github.com/olkipaint/backend/internal/auth"
	"github.com/olkipaint/backend/internal/logger"
	"github.com/olkipaint/backend/internal/metrics"
	"github.com/olkipaint/backend/internal/storage"
)

// AdminHandler serves operator login and the admin dashboard endpoints.
type AdminHandler struct {
	queries storage.Querier
	jwt     *auth.JWTService
	admin   auth.AdminConfig
	limiter *auth.RateLimiter
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(queries storage.Querier, jwt *auth.JWTService, admin auth.AdminConfig, limiter *auth.RateLimiter) *AdminHandler {
	return &AdminHandler{queries: queries, jwt: jwt, admin: admin, limiter: limiter}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/v1/auth/login and issues a bearer token.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if err := h.limiter.CheckLoginRateLimit(r.Context(), req.Username); err != nil {
		log.Warn().Str("username", req.Username).Msg("login locked out")
		respondError(w, http.StatusTooManyRequests, "too many failed login attempts, try again later")
		return
	}

	if req.Username != h.admin.Username || !auth.CheckPassword(h.admin.PasswordHash, req.Password) {
		metrics.APIAuthFailuresTotal.Inc()
		if err := h.limiter.RecordFailedLogin(r.Context(), req.Username); err != nil {
			log.Warn().Err(err).Msg("record failed login")
		}
		log.Warn().Str("username", req.Username).Msg("login failed")
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := h.limiter.ClearFailedLogins(r.Context(), req.Username); err != nil {
		log.Warn().Err(err).Msg("clear failed logins")
	}

	token, err := h.jwt.GenerateToken(req.Username)
	if err != nil {
		log.Error().Err(err).Msg("generate token")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	log.Info().Str("username", req.Username).Msg("operator logged in")
	respondJSON(w, http.StatusOK, map[string]string{"token": token})
}

type statsResponse struct {
	Products                   int64 `json:"products"`
	ContactRequests            int64 `json:"contact_requests"`
	UnprocessedContactRequests int64 `json:"unprocessed_contact_requests"`
}

// Stats handles GET /api/v1/admin/stats.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	products, err := h.queries.CountProducts(r.Context(), "")
	if err != nil {
		log.Error().Err(err).Msg("count products")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	contacts, err := h.queries.CountContactRequests(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("count contact requests")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	unprocessed, err := h.queries.CountUnprocessedContactRequests(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("count unprocessed contact requests")
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, http.StatusOK, statsResponse{
		Products:                   products,
		ContactRequests:            contacts,
		UnprocessedContactRequests: unprocessed,
	})
}
