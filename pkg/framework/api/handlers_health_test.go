package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealthz(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()

	handler.Healthz(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Healthz() status code = %v, want %v", w.Code, http.StatusOK)
	}

	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Healthz() response is not valid JSON: %v", err)
	}

	if status.Status != "healthy" {
		t.Errorf("Healthz() status = %v, want %v", status.Status, "healthy")
	}
	if status.Version != "test-version" {
		t.Errorf("Healthz() version = %v, want %v", status.Version, "test-version")
	}
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		opts       []testHandlerOption
		wantCode   int
		wantEvents string
	}{
		{"all healthy", nil, http.StatusOK, "available"},
		{"no event store", []testHandlerOption{WithNilEventStore()}, http.StatusOK, "unavailable"},
		{"no validator", []testHandlerOption{WithoutValidator()}, http.StatusServiceUnavailable, "available"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t, tt.opts...)

			req := httptest.NewRequest("GET", "/readyz", nil)
			w := httptest.NewRecorder()

			handler.Readyz(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("Readyz() status code = %v, want %v", w.Code, tt.wantCode)
			}

			var status HealthStatus
			if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
				t.Fatalf("Readyz() response is not valid JSON: %v", err)
			}
			if got := status.Components["eventStore"].Status; got != tt.wantEvents {
				t.Errorf("eventStore status = %v, want %v", got, tt.wantEvents)
			}
		})
	}
}

func TestReadyz_StoreClosed(t *testing.T) {
	env := newTestEnv(t)
	env.db.Close()

	w := httptest.NewRecorder()
	env.handler.Readyz(w, httptest.NewRequest("GET", "/readyz", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Readyz() status code = %v, want %v", w.Code, http.StatusServiceUnavailable)
	}
	var status HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("Readyz() response is not valid JSON: %v", err)
	}
	if got := status.Components["store"].Status; got != "unhealthy" {
		t.Errorf("store status = %v, want unhealthy", got)
	}
}
