package services

import (
	"context"

	"weatherstation/models"
)

// Mirror forwards each uploaded record to a secondary telemetry sink
type Mirror interface {
	Name() string
	Publish(ctx context.Context, record models.Record) error
	Close() error
}
