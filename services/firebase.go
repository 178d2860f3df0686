package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"firebase.google.com/go/v4/errorutils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// AdminStore is a RecordStore backed by the Firebase Admin SDK, authenticated
// with a service account instead of a database secret.
type AdminStore struct {
	client *db.Client
	logger *zap.Logger
}

func NewAdminStore(ctx context.Context, dbURL, serviceAccountJSON string, logger *zap.Logger) (*AdminStore, error) {
	conf := &firebase.Config{
		DatabaseURL: dbURL,
	}

	opt := option.WithCredentialsJSON([]byte(serviceAccountJSON))
	return newAdminStore(ctx, conf, logger, opt)
}

// newAdminStore connects with the given app options. An emulator address
// (host:port?ns=name) as DatabaseURL needs no credential options.
func newAdminStore(ctx context.Context, conf *firebase.Config, logger *zap.Logger, opts ...option.ClientOption) (*AdminStore, error) {
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting database client: %w", err)
	}

	fs := &AdminStore{
		client: client,
		logger: logger,
	}

	if err := fs.testConnection(ctx); err != nil {
		logger.Error("Firebase connection test failed", zap.Error(err))
		return nil, fmt.Errorf("firebase connection test failed: %w", err)
	}

	return fs, nil
}

// testConnection reads the root once per attempt, backing off between attempts
func (fs *AdminStore) testConnection(ctx context.Context) error {
	maxRetries := 3

	for attempt := 1; attempt <= maxRetries; attempt++ {
		fs.logger.Info("Testing Firebase connection", zap.Int("attempt", attempt), zap.Int("max_retries", maxRetries))

		var data any
		err := fs.client.NewRef("/").Get(ctx, &data)
		if err == nil {
			fs.logger.Info("Firebase connection successful")
			return nil
		}

		fs.logger.Warn("Firebase connection failed",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", maxRetries),
			zap.Error(err))

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}

	return fmt.Errorf("failed to connect to Firebase after %d attempts", maxRetries)
}

func (fs *AdminStore) Push(ctx context.Context, path string, data any) Result {
	ref, err := fs.client.NewRef(path).Push(ctx, data)
	if err != nil {
		return sdkFailure("push "+path, err)
	}
	fs.logger.Debug("Pushed record", zap.String("path", path), zap.String("key", ref.Key))
	return successResult(nil)
}

func (fs *AdminStore) Set(ctx context.Context, path string, data any) Result {
	if err := fs.client.NewRef(path).Set(ctx, data); err != nil {
		return sdkFailure("set "+path, err)
	}
	return successResult(nil)
}

func (fs *AdminStore) Get(ctx context.Context, path string) Result {
	var data json.RawMessage
	if err := fs.client.NewRef(path).Get(ctx, &data); err != nil {
		return sdkFailure("get "+path, err)
	}
	return successResult(data)
}

// Close releases the service; the SDK client holds no connection of its own
func (fs *AdminStore) Close() error {
	fs.logger.Info("Closing Firebase service")
	return nil
}

// sdkFailure maps an SDK error to a Result. Errors carrying an HTTP response
// came from the server; anything else never got one.
func sdkFailure(op string, err error) Result {
	if resp := errorutils.HTTPResponse(err); resp != nil {
		return failureResult(FaultResponse, op, fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(err.Error(), maxMessageBody)), err)
	}
	return failureResult(FaultTransport, op, fmt.Sprintf("Request error: %v", err), err)
}
