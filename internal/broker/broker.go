// Package broker provides brokerage order-history clients.
package broker

import (
	"context"
	"time"

	"github.com/APWalter/trade-journal/internal/models"
)

// OrderFetcher fetches raw order records for an account and window.
// Implementations report credential problems as the apperr token
// sentinels and non-success broker responses as *apperr.UpstreamError.
type OrderFetcher interface {
	FetchOrders(ctx context.Context, token, accountID string, from, to time.Time) ([]models.Order, error)
}
