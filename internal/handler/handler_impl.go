// Package handler provides HTTP request handlers for the application.
package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/popeskul/webhook-inbox/internal/metrics"
	"github.com/popeskul/webhook-inbox/internal/middleware"
	"github.com/popeskul/webhook-inbox/internal/models"
	"github.com/popeskul/webhook-inbox/internal/service"
)

// SignatureHeader carries the hex HMAC-SHA256 of the raw request body.
const SignatureHeader = "X-Signature"

// maxBodySize bounds webhook bodies well above the 4096-char text limit.
const maxBodySize = 1 << 20

const (
	errorCodeInvalidSignature = "INVALID_SIGNATURE"
	errorCodeValidation       = "VALIDATION_ERROR"
	errorCodeBadQueryParam    = "INVALID_QUERY_PARAM"
)

const (
	errorMessageInvalidSignature     = "invalid signature"
	errorMessageFailedToStoreMessage = "Failed to store message"
	errorMessageFailedToListMessages = "Failed to retrieve messages"
	errorMessageFailedToGetStats     = "Failed to compute statistics"
)

type Handler struct {
	service *service.Service
	logger  *zap.Logger
}

// ErrorResponse is the JSON error body shared by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// NewHandler creates a new handler instance.
func NewHandler(service *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Webhook handles POST /webhook. Created and Duplicate are indistinguishable
// to the caller; each terminal state increments exactly one outcome counter.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		h.logger.Error("Failed to read webhook body",
			zap.String("request_id", requestID),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, middleware.ErrorMessageInternal)
		return
	}

	outcome, err := h.service.Message.Ingest(r.Context(), body, r.Header.Get(SignatureHeader))
	if err != nil {
		var vErr *models.ValidationError

		switch {
		case errors.Is(err, models.ErrInvalidSignature):
			metrics.WebhookRequestsTotal.WithLabelValues(metrics.ResultInvalidSignature).Inc()
			h.logger.Warn("Webhook rejected: invalid signature",
				zap.String("request_id", requestID))
			h.sendError(w, r, http.StatusUnauthorized, errorCodeInvalidSignature, errorMessageInvalidSignature)

		case errors.As(err, &vErr):
			h.logger.Warn("Webhook rejected: invalid payload",
				zap.String("request_id", requestID),
				zap.String("field", vErr.Field),
				zap.String("reason", vErr.Reason))
			render.Status(r, http.StatusUnprocessableEntity)
			render.JSON(w, r, ErrorResponse{
				Error:   errorCodeValidation,
				Message: vErr.Reason,
				Field:   vErr.Field,
			})

		default:
			h.logger.Error("Webhook storage failure",
				zap.String("request_id", requestID),
				zap.Error(err))
			h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToStoreMessage)
		}
		return
	}

	metrics.WebhookRequestsTotal.WithLabelValues(string(outcome)).Inc()

	render.JSON(w, r, map[string]string{"status": "ok"})
}

// GetMessages handles GET /messages with filtering and pagination.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	filter := models.ListFilter{
		FromMsisdn: r.URL.Query().Get("from"),
		Since:      r.URL.Query().Get("since"),
		Query:      r.URL.Query().Get("q"),
	}

	var ok bool
	if filter.Limit, ok = h.queryInt(w, r, "limit", models.DefaultListLimit); !ok {
		return
	}
	if filter.Offset, ok = h.queryInt(w, r, "offset", 0); !ok {
		return
	}

	result, err := h.service.Message.ListMessages(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list messages",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToListMessages)
		return
	}

	render.JSON(w, r, result)
}

// GetStats handles GET /stats.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Message.GetStats(r.Context())
	if err != nil {
		h.logger.Error("Failed to get stats",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err))
		h.sendError(w, r, http.StatusInternalServerError, middleware.ErrorCodeInternal, errorMessageFailedToGetStats)
		return
	}

	render.JSON(w, r, stats)
}

// LivenessCheck handles GET /health/live.
func (h *Handler) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "alive"})
}

// ReadinessCheck handles GET /health/ready. Fails closed with 503 when the
// database is unreachable.
func (h *Handler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := h.service.Health.GetHealth()

	if health.Status != service.StatusHealthy {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, health)
}

// Root handles GET / with a service banner.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"name":    "webhook-inbox",
		"version": "1.0.0",
		"status":  "running",
	})
}

// queryInt parses an optional integer query parameter. A malformed value is
// a client fault (422); range clamping happens later in the service layer.
func (h *Handler) queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ErrorResponse{
			Error:   errorCodeBadQueryParam,
			Message: "must be an integer",
			Field:   name,
		})
		return 0, false
	}

	return value, true
}

func (h *Handler) sendError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	render.Status(r, statusCode)
	render.JSON(w, r, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}
