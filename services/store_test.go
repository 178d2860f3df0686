package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type capturedRequest struct {
	Method      string
	Path        string
	Auth        string
	HasAuth     bool
	ContentType string
	Body        string
}

func newStoreServer(t *testing.T, status int, respBody string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()

	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, hasAuth := r.URL.Query()["auth"]
		captured = append(captured, capturedRequest{
			Method:      r.Method,
			Path:        r.URL.Path,
			Auth:        r.URL.Query().Get("auth"),
			HasAuth:     hasAuth,
			ContentType: r.Header.Get("Content-Type"),
			Body:        string(body),
		})
		w.WriteHeader(status)
		_, _ = io.WriteString(w, respBody)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestRESTStorePushCreated(t *testing.T) {
	srv, captured := newStoreServer(t, http.StatusCreated, `{"name":"-Nabc"}`)
	store := NewRESTStore(srv.URL+"/", "s3cret", zap.NewNop())

	res := store.Push(context.Background(), "weather_readings", map[string]any{"temperature": 22})
	if !res.Success || res.Message != "Success" {
		t.Fatalf("expected (true, Success), got (%v, %q)", res.Success, res.Message)
	}
	if res.Err() != nil {
		t.Fatalf("expected nil error, got %v", res.Err())
	}

	if len(*captured) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*captured))
	}
	req := (*captured)[0]
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if req.Path != "/weather_readings.json" {
		t.Errorf("path = %s", req.Path)
	}
	if req.Auth != "s3cret" {
		t.Errorf("auth = %q, want s3cret", req.Auth)
	}
	if req.ContentType != "application/json" {
		t.Errorf("content type = %q", req.ContentType)
	}
	var payload map[string]float64
	if err := json.Unmarshal([]byte(req.Body), &payload); err != nil || payload["temperature"] != 22 {
		t.Errorf("unexpected body %q (%v)", req.Body, err)
	}
}

func TestRESTStoreSetUsesPutWithoutSecret(t *testing.T) {
	srv, captured := newStoreServer(t, http.StatusOK, `{}`)
	store := NewRESTStore(srv.URL, "", zap.NewNop())

	res := store.Set(context.Background(), "/latest_reading", map[string]any{"ok": true})
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}

	req := (*captured)[0]
	if req.Method != http.MethodPut {
		t.Errorf("method = %s, want PUT", req.Method)
	}
	if req.Path != "/latest_reading.json" {
		t.Errorf("path = %s", req.Path)
	}
	if req.HasAuth {
		t.Error("auth parameter should be absent without a secret")
	}
}

func TestRESTStoreGetReturnsBody(t *testing.T) {
	srv, captured := newStoreServer(t, http.StatusOK, `{"temperature":21.5}`)
	store := NewRESTStore(srv.URL, "", zap.NewNop())

	res := store.Get(context.Background(), "latest_reading")
	if !res.Success {
		t.Fatalf("expected success, got %q", res.Message)
	}
	if string(res.Body) != `{"temperature":21.5}` {
		t.Fatalf("unexpected body %q", res.Body)
	}
	req := (*captured)[0]
	if req.Method != http.MethodGet {
		t.Errorf("method = %s, want GET", req.Method)
	}
	if req.ContentType != "" {
		t.Errorf("GET should not send a content type, got %q", req.ContentType)
	}
}

func TestRESTStoreNotFound(t *testing.T) {
	srv, _ := newStoreServer(t, http.StatusNotFound, strings.Repeat("x", 250))
	store := NewRESTStore(srv.URL, "", zap.NewNop())

	res := store.Push(context.Background(), "weather_readings", map[string]any{})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Message, "404") {
		t.Fatalf("message %q should contain 404", res.Message)
	}
	if want := "HTTP 404: " + strings.Repeat("x", 100); res.Message != want {
		t.Fatalf("body snippet not truncated to 100 chars: %q", res.Message)
	}
	if res.Fault == nil || res.Fault.Kind != FaultResponse {
		t.Fatalf("expected response fault, got %+v", res.Fault)
	}
}

func TestRESTStoreConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	store := NewRESTStore(addr, "", zap.NewNop())
	res := store.Set(context.Background(), "latest_reading", map[string]any{})

	if res.Success {
		t.Fatal("expected failure")
	}
	var fault *Fault
	if !errors.As(res.Err(), &fault) || fault.Kind != FaultTransport {
		t.Fatalf("expected transport fault, got %v", res.Err())
	}
	if !strings.Contains(res.Message, fault.Err.Error()) {
		t.Fatalf("message %q should contain error text %q", res.Message, fault.Err.Error())
	}
}

func TestRESTStoreMalformedGet(t *testing.T) {
	srv, _ := newStoreServer(t, http.StatusOK, `<html>not json</html>`)
	store := NewRESTStore(srv.URL, "", zap.NewNop())

	res := store.Get(context.Background(), "latest_reading")
	if res.Success {
		t.Fatal("expected failure for non-JSON body")
	}
	if res.Fault == nil || res.Fault.Kind != FaultResponse {
		t.Fatalf("expected response fault, got %+v", res.Fault)
	}
}

func TestRESTStoreUnencodablePayload(t *testing.T) {
	srv, captured := newStoreServer(t, http.StatusOK, `{}`)
	store := NewRESTStore(srv.URL, "", zap.NewNop())

	res := store.Push(context.Background(), "weather_readings", map[string]any{"bad": make(chan int)})
	if res.Success {
		t.Fatal("expected failure")
	}
	if len(*captured) != 0 {
		t.Fatal("no request should be sent for an unencodable payload")
	}
}

func TestTruncateCountsCharacters(t *testing.T) {
	if got := truncate("°°°°", 2); got != "°°" {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 100); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}
