package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"go.uber.org/zap"
)

func TestSDKFailureWithoutResponseIsTransport(t *testing.T) {
	res := sdkFailure("push weather_readings", errors.New("dial tcp: lookup example.firebaseio.com: no such host"))

	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Fault == nil || res.Fault.Kind != FaultTransport {
		t.Fatalf("expected transport fault, got %+v", res.Fault)
	}
	if !strings.Contains(res.Message, "no such host") {
		t.Fatalf("message %q should carry the error text", res.Message)
	}
}

type rtdbRequest struct {
	method string
	path   string
	ns     string
	body   string
}

// newRTDBServer answers like the database emulator. Writes under /locked
// are rejected with 401.
func newRTDBServer(t *testing.T) (*httptest.Server, *[]rtdbRequest) {
	t.Helper()
	var mu sync.Mutex
	var requests []rtdbRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, rtdbRequest{method: r.Method, path: r.URL.Path, ns: r.URL.Query().Get("ns"), body: string(body)})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/locked"):
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Permission denied"}`))
		case r.Method == http.MethodPost:
			w.Write([]byte(`{"name":"-Nabc123"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/latest_reading.json":
			w.Write([]byte(`{"temperature":22,"weather_quality":"nice"}`))
		case r.Method == http.MethodGet:
			w.Write([]byte(`null`))
		default:
			w.Write(body)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func newTestAdminStore(t *testing.T, srv *httptest.Server) *AdminStore {
	t.Helper()
	conf := &firebase.Config{
		DatabaseURL: strings.Replace(srv.URL, "http://127.0.0.1", "localhost", 1) + "?ns=weather-test",
		ProjectID:   "weather-test",
	}
	store, err := newAdminStore(context.Background(), conf, zap.NewNop())
	if err != nil {
		t.Fatalf("newAdminStore returned error: %v", err)
	}
	return store
}

func TestAdminStorePushSetGet(t *testing.T) {
	srv, requests := newRTDBServer(t)
	store := newTestAdminStore(t, srv)
	ctx := context.Background()

	if res := store.Push(ctx, "weather_readings", sampleRecord()); !res.Success {
		t.Fatalf("Push failed: %+v", res)
	}
	if res := store.Set(ctx, "latest_reading", sampleRecord()); !res.Success {
		t.Fatalf("Set failed: %+v", res)
	}
	res := store.Get(ctx, "latest_reading")
	if !res.Success {
		t.Fatalf("Get failed: %+v", res)
	}
	if !strings.Contains(string(res.Body), `"weather_quality":"nice"`) {
		t.Fatalf("unexpected Get body %s", res.Body)
	}

	// connection test, push, set, get
	if len(*requests) != 4 {
		t.Fatalf("expected 4 requests, got %d", len(*requests))
	}
	push, set := (*requests)[1], (*requests)[2]
	if push.method != http.MethodPost || push.path != "/weather_readings.json" || push.ns != "weather-test" {
		t.Fatalf("unexpected push request %+v", push)
	}
	if set.method != http.MethodPut || set.path != "/latest_reading.json" {
		t.Fatalf("unexpected set request %+v", set)
	}
	if !strings.Contains(push.body, `"light_raw":620`) {
		t.Fatalf("push body should be the record JSON: %s", push.body)
	}
}

func TestAdminStoreErrorStatusIsResponseFault(t *testing.T) {
	srv, _ := newRTDBServer(t)
	store := newTestAdminStore(t, srv)

	res := store.Push(context.Background(), "locked/readings", sampleRecord())
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Fault == nil || res.Fault.Kind != FaultResponse {
		t.Fatalf("expected response fault, got %+v", res.Fault)
	}
	if !strings.HasPrefix(res.Message, "HTTP 401: ") {
		t.Fatalf("message %q should start with the status", res.Message)
	}
	if resp := errorutils.HTTPResponse(res.Fault.Err); resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("fault should keep the SDK error, got %v", res.Fault.Err)
	}
}
