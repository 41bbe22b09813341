package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/service"

	"github.com/gin-gonic/gin"
)

type stubQuoteService struct {
	resp service.QuoteResponse
	err  error
}

func (s *stubQuoteService) ComputeQuote(ctx context.Context, req service.ComputeQuoteRequest) (service.QuoteResponse, error) {
	return s.resp, s.err
}

func newQuoteRouter(svc service.QuoteService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewQuoteHandler(svc).RegisterRoutes(router.Group(""))
	return router
}

func postQuote(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestComputeQuoteEndpoint(t *testing.T) {
	svc := &stubQuoteService{resp: service.QuoteResponse{
		Service:        "screen",
		Quantity:       10,
		Total:          "105.00",
		RuleSetVersion: 1,
	}}
	router := newQuoteRouter(svc)

	w := postQuote(t, router, service.ComputeQuoteRequest{
		Service: "screen", Quantity: 10, Colors: 2, Locations: []string{"front"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var body struct {
		Status string                `json:"status"`
		Data   service.QuoteResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Status != "success" || body.Data.Total != "105.00" {
		t.Errorf("body = %+v", body)
	}
}

func TestComputeQuoteEndpointRejectsMalformedJSON(t *testing.T) {
	router := newQuoteRouter(&stubQuoteService{})

	req := httptest.NewRequest(http.MethodPost, "/api/quotes", bytes.NewReader([]byte(`{not json`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestComputeQuoteEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &pricing.ValidationError{Field: "quantity", Message: "must be a positive integer"}, http.StatusBadRequest},
		{"margin violation", &pricing.MarginViolationError{RuleID: "r1", ImpliedBps: 100, MinimumBps: 3000}, http.StatusUnprocessableEntity},
		{"no matching rule", pricing.ErrNoMatchingRule, http.StatusUnprocessableEntity},
		{"strict audit failure", &service.PersistenceError{Err: errors.New("disk full")}, http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		router := newQuoteRouter(&stubQuoteService{err: tt.err})
		w := postQuote(t, router, service.ComputeQuoteRequest{Service: "screen", Quantity: 10})
		if w.Code != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.name, w.Code, tt.want)
		}

		var body struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode body: %v", tt.name, err)
		}
		if body.Status != "error" || body.Error == "" {
			t.Errorf("%s: body = %+v", tt.name, body)
		}
	}
}
