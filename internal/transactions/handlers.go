package transactions

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aberkane/fraudsight/internal/pagination"
	"github.com/aberkane/fraudsight/internal/session"
)

const topCountriesLimit = 5

// Handler serves the history and statistics endpoints. All routes
// require a logged-in user; the stats routes widen to global scope for
// admins.
type Handler struct {
	store       Store
	pageSize    int
	dailyWindow int
}

// NewHandler creates a new transactions handler.
func NewHandler(store Store, pageSize int) *Handler {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Handler{store: store, pageSize: pageSize, dailyWindow: DefaultDailyWindow}
}

// SetDailyWindow overrides the default trailing window for the daily
// stats endpoint.
func (h *Handler) SetDailyWindow(days int) {
	if days > 0 {
		h.dailyWindow = days
	}
}

// RegisterRoutes registers routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/transactions", h.List)
	rg.GET("/stats", h.Stats)
	rg.GET("/stats/countries", h.Countries)
	rg.GET("/stats/daily", h.Daily)
}

// List returns the caller's scored transactions, newest first.
func (h *Handler) List(c *gin.Context) {
	u, ok := session.GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	page, err := h.store.List(c.Request.Context(), ListQuery{
		OwnerID: u.ID,
		Cursor:  c.Query("cursor"),
		Limit:   h.pageSize,
	})
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid cursor"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list transactions"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// scope returns the owner filter for aggregate views: admins see all
// rows, everyone else sees their own.
func scope(c *gin.Context) (string, bool) {
	u, ok := session.GetUser(c)
	if !ok {
		return "", false
	}
	if u.IsAdmin() {
		return "", true
	}
	return u.ID, true
}

// Stats returns the summary figures for the caller's scope.
func (h *Handler) Stats(c *gin.Context) {
	owner, ok := scope(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	sum, err := h.store.Summarize(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, sum)
}

// Countries returns the top transaction countries by volume.
func (h *Handler) Countries(c *gin.Context) {
	owner, ok := scope(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	countries, err := h.store.TopCountries(c.Request.Context(), owner, topCountriesLimit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"countries": countries})
}

// Daily returns per-day volumes for the trailing window. The window is
// adjustable with ?days= up to one year.
func (h *Handler) Daily(c *gin.Context) {
	owner, ok := scope(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	days := h.dailyWindow
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 365 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}

	daily, err := h.store.Daily(c.Request.Context(), owner, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "daily": daily})
}
