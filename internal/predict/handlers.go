package predict

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aberkane/fraudsight/internal/encoding"
	"github.com/aberkane/fraudsight/internal/model"
	"github.com/aberkane/fraudsight/internal/session"
)

// Handler serves the prediction and model-health endpoints.
type Handler struct {
	svc    *Service
	handle *model.Handle
}

// NewHandler creates a new predict handler.
func NewHandler(svc *Service, handle *model.Handle) *Handler {
	return &Handler{svc: svc, handle: handle}
}

// Predict handles POST /api/predict. The body must carry all thirteen
// transaction fields; the response is the assembled verdict payload.
func (h *Handler) Predict(c *gin.Context) {
	u, ok := session.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	result, err := h.svc.Predict(c.Request.Context(), u.ID, raw)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// statusFor maps pipeline errors onto HTTP statuses: client mistakes
// (missing or malformed fields) are 400, everything else is 500.
func statusFor(err error) int {
	var missing *encoding.MissingFieldError
	var invalid *encoding.InvalidFieldError
	switch {
	case errors.As(err, &missing), errors.As(err, &invalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Health handles GET /api/health. It reports artifact state without
// touching the database; the service is healthy only with both
// artifacts loaded, unhealthy otherwise.
func (h *Handler) Health(c *gin.Context) {
	modelLoaded := h.handle.ClassifierLoaded()
	scalerLoaded := h.handle.ScalerLoaded()

	status := "healthy"
	if !modelLoaded || !scalerLoaded {
		status = "unhealthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"model_loaded":  modelLoaded,
		"scaler_loaded": scalerLoaded,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}
