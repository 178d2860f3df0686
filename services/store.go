package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// RecordStore is a path-addressed JSON document store
type RecordStore interface {
	// Push creates a child under path with a store-generated key
	Push(ctx context.Context, path string, data any) Result
	// Set replaces the document at path
	Set(ctx context.Context, path string, data any) Result
	// Get reads the document at path; the JSON body is in Result.Body
	Get(ctx context.Context, path string) Result
}

const maxMessageBody = 100

// RESTStore talks to the database REST API, authenticating with an optional
// static secret in the auth query parameter. Every call uses its own
// connection.
type RESTStore struct {
	baseURL    string
	secret     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewRESTStore creates a REST client for the database at baseURL
func NewRESTStore(baseURL, secret string, logger *zap.Logger) *RESTStore {
	return &RESTStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
		logger: logger,
	}
}

func (s *RESTStore) Push(ctx context.Context, path string, data any) Result {
	return s.do(ctx, http.MethodPost, "push", path, data)
}

func (s *RESTStore) Set(ctx context.Context, path string, data any) Result {
	return s.do(ctx, http.MethodPut, "set", path, data)
}

func (s *RESTStore) Get(ctx context.Context, path string) Result {
	return s.do(ctx, http.MethodGet, "get", path, nil)
}

// buildURL returns base/path.json with the secret appended when configured
func (s *RESTStore) buildURL(path string) string {
	endpoint := fmt.Sprintf("%s/%s.json", s.baseURL, strings.Trim(path, "/"))
	if s.secret != "" {
		endpoint += "?" + url.Values{"auth": {s.secret}}.Encode()
	}
	return endpoint
}

func (s *RESTStore) do(ctx context.Context, method, op, path string, data any) Result {
	op = op + " " + path

	var body io.Reader
	if method != http.MethodGet {
		jsonData, err := json.Marshal(data)
		if err != nil {
			return failureResult(FaultTransport, op, fmt.Sprintf("Request error: %v", err), fmt.Errorf("marshal payload: %w", err))
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.buildURL(path), body)
	if err != nil {
		return failureResult(FaultTransport, op, fmt.Sprintf("Request error: %v", err), err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "weather-station/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Debug("Store request failed", zap.String("op", op), zap.Error(err))
		return failureResult(FaultTransport, op, fmt.Sprintf("Request error: %v", err), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return failureResult(FaultTransport, op, fmt.Sprintf("Request error: %v", err), fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		s.logger.Debug("Store returned error status",
			zap.String("op", op),
			zap.Int("status_code", resp.StatusCode))
		return failureResult(FaultResponse, op,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(string(respBody), maxMessageBody)),
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	if method == http.MethodGet && !json.Valid(respBody) {
		return failureResult(FaultResponse, op,
			fmt.Sprintf("Malformed response: %s", truncate(string(respBody), maxMessageBody)),
			fmt.Errorf("response body is not valid JSON"))
	}

	s.logger.Debug("Store request succeeded",
		zap.String("op", op),
		zap.Int("status_code", resp.StatusCode))
	return successResult(respBody)
}

// truncate cuts s to at most n characters
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
