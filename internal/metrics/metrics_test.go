package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	dto "github.com/prometheus/client_model/go"
)

func scrape(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("scrape failed with %d", w.Code)
	}
	return w.Body.String()
}

func TestStatusBucket(t *testing.T) {
	cases := map[int]string{
		100: "1xx",
		200: "2xx", 201: "2xx",
		301: "3xx",
		400: "4xx", 404: "4xx", 429: "4xx",
		500: "5xx", 503: "5xx",
	}
	for code, want := range cases {
		if got := statusBucket(code); got != want {
			t.Errorf("statusBucket(%d) = %s, want %s", code, got, want)
		}
	}
}

func TestScrapeExposesGauges(t *testing.T) {
	body := scrape(t)

	// Gauges export at their zero value without any observation.
	for _, name := range []string{
		"fraudsight_model_loaded",
		"fraudsight_active_websocket_clients",
		"fraudsight_db_open_connections",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape missing %s", name)
		}
	}
}

func TestScrapeExposesCountersAfterFirstObservation(t *testing.T) {
	PredictionsTotal.WithLabelValues("1", "High").Inc()
	LoginsTotal.WithLabelValues("success").Inc()

	body := scrape(t)
	for _, name := range []string{
		"fraudsight_predictions_total",
		"fraudsight_logins_total",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape missing %s", name)
		}
	}
}

func TestPredictionsCounterLabels(t *testing.T) {
	counter := PredictionsTotal.WithLabelValues("0", "Low")
	counter.Inc()
	counter.Inc()

	var m dto.Metric
	if err := counter.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if got := m.GetCounter().GetValue(); got < 2 {
		t.Errorf("expected counter >= 2, got %v", got)
	}

	labels := map[string]string{}
	for _, lp := range m.GetLabel() {
		labels[lp.GetName()] = lp.GetValue()
	}
	if labels["label"] != "0" || labels["risk_level"] != "Low" {
		t.Errorf("unexpected label pairs: %v", labels)
	}
}

func TestMiddlewareCountsByRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/api/transactions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"transactions": []string{}})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var m dto.Metric
	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/transactions", "2xx")
	if err := counter.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	if m.GetCounter().GetValue() < 1 {
		t.Error("request was not counted under its route pattern")
	}
}
