package modelserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/bikeval/internal/domain"
	"github.com/kailas-cloud/bikeval/internal/domain/features"
)

func TestPredict_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predict" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}

		var req predictRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !features.SameSchema(req.Columns) {
			t.Errorf("unexpected columns: %v", req.Columns)
		}
		if len(req.Rows) != 1 || req.Rows[0][0] != 25000 || req.Rows[0][1] != 5 || req.Rows[0][2] != 349 {
			t.Errorf("unexpected rows: %v", req.Rows)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{150800}})
	}))
	defer server.Close()

	c, err := New(Config{Endpoint: server.URL + "/", APIKey: "secret"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := c.Predict(context.Background(), []features.Vector{{KmsDriven: 25000, Age: 5, Power: 349}})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if len(got) != 1 || got[0] != 150800 {
		t.Errorf("unexpected predictions: %v", got)
	}
}

func TestPredict_WrongCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{1, 2}})
	}))
	defer server.Close()

	c, _ := New(Config{Endpoint: server.URL})
	_, err := c.Predict(context.Background(), []features.Vector{{Power: 150}})
	if !errors.Is(err, domain.ErrPredictorContract) {
		t.Errorf("expected ErrPredictorContract, got %v", err)
	}
}

func TestPredict_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c, _ := New(Config{Endpoint: server.URL})
	_, err := c.Predict(context.Background(), []features.Vector{{Power: 150}})
	if !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestPredict_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	c, _ := New(Config{Endpoint: server.URL})
	_, err := c.Predict(context.Background(), []features.Vector{{Power: 150}})
	if !errors.Is(err, domain.ErrPredictorContract) {
		t.Errorf("expected ErrPredictorContract, got %v", err)
	}
}

func TestPredict_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(predictResponse{Predictions: []float64{1}})
	}))
	defer server.Close()

	c, _ := New(Config{Endpoint: server.URL, Timeout: 20 * time.Millisecond})
	_, err := c.Predict(context.Background(), []features.Vector{{Power: 150}})
	if !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestPredict_EmptyRowsSkipsRequest(t *testing.T) {
	c, _ := New(Config{Endpoint: "http://127.0.0.1:1"})
	got, err := c.Predict(context.Background(), nil)
	if err != nil || got != nil {
		t.Errorf("expected nil, nil; got %v, %v", got, err)
	}
}

func TestHealthCheck(t *testing.T) {
	var healthy atomic.Bool
	healthy.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c, _ := New(Config{Endpoint: server.URL})
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("expected healthy, got %v", err)
	}
	healthy.Store(false)
	if err := c.HealthCheck(context.Background()); !errors.Is(err, domain.ErrPredictorUnavailable) {
		t.Errorf("expected ErrPredictorUnavailable, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty endpoint")
	}
	c, _ := New(Config{Endpoint: "http://models:9000/"})
	if c.ModelVersion() != "remote:http://models:9000" {
		t.Errorf("ModelVersion() = %q", c.ModelVersion())
	}
	c, _ = New(Config{Endpoint: "http://models:9000", Version: "2026.1"})
	if c.ModelVersion() != "2026.1" {
		t.Errorf("ModelVersion() = %q", c.ModelVersion())
	}
}
