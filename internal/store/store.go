// Package store provides local persistence: CSV ingestion for options
// chains and OHLCV bars, and a SQLite cache for candles and loaded-chain
// summaries.
package store

import (
	"context"
	"time"

	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// DataStore is the persistence surface the CLI drives.
type DataStore interface {
	// Candles
	SaveCandles(ctx context.Context, symbol string, candles []models.Candle) error
	GetCandles(ctx context.Context, symbol string, from, to time.Time) ([]models.Candle, error)

	// Chain summaries
	SaveChainSummary(ctx context.Context, summary models.ChainSummary) error
	GetChainSummary(ctx context.Context, symbol string) (*models.ChainSummary, error)

	// Lifecycle
	Close() error
}
