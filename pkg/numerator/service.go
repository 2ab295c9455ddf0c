// Package numerator provides per-tenant document auto-numbering.
//
// Numbers follow PREFIX-YYYY-NNNN (e.g. INV-2026-0001). Allocation uses a
// single atomic UPSERT ... RETURNING on the sequence row, so two concurrent
// invoice requests for the same tenant can never observe the same value.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Well-known prefixes.
const (
	PrefixInvoice  = "INV"
	PrefixPurchase = "PUR"
)

// Querier interface for database operations.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Config holds numbering configuration.
type Config struct {
	// Prefix added to all numbers (e.g., "INV", "PUR")
	Prefix string

	// PadWidth is the minimum number width (default 4)
	PadWidth int
}

// DefaultConfig returns the standard yearly-reset format.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:   prefix,
		PadWidth: 4,
	}
}

// Service allocates document numbers from sys_sequences rows keyed by
// (tenant_id, prefix, year).
type Service struct {
	querier Querier
}

// New creates a numerator service.
func New(querier Querier) *Service {
	return &Service{querier: querier}
}

// Next allocates the next number for the tenant and formats it.
// The sequence resets each calendar year.
func (s *Service) Next(ctx context.Context, tenantID string, cfg Config, period time.Time) (string, error) {
	if s == nil || s.querier == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}

	var num int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (tenant_id, prefix, year, current_val)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, prefix, year)
		DO UPDATE SET current_val = sys_sequences.current_val + 1
		RETURNING current_val
	`, tenantID, cfg.Prefix, period.Year()).Scan(&num)
	if err != nil {
		return "", fmt.Errorf("next sequence value: %w", err)
	}

	return Format(cfg, period, num), nil
}

// Bump raises the sequence so the next allocation returns at least
// value+1. Used by the purchase pipeline's defensive max-of pattern when
// legacy rows carry numbers ahead of the counter.
func (s *Service) Bump(ctx context.Context, tenantID string, cfg Config, period time.Time, value int64) error {
	var out int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (tenant_id, prefix, year, current_val)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (tenant_id, prefix, year)
		DO UPDATE SET current_val = GREATEST(sys_sequences.current_val, $4)
		RETURNING current_val
	`, tenantID, cfg.Prefix, period.Year(), value).Scan(&out)
	if err != nil {
		return fmt.Errorf("bump sequence value: %w", err)
	}
	return nil
}

// Format builds the final number string.
func Format(cfg Config, period time.Time, num int64) string {
	padWidth := cfg.PadWidth
	if padWidth == 0 {
		padWidth = 4
	}
	return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), padWidth, num)
}

// Parse extracts the numeric tail from a formatted number.
// Returns -1 if the string does not look like PREFIX-YYYY-NNNN.
func Parse(formatted string) int64 {
	parts := strings.Split(formatted, "-")
	if len(parts) < 3 {
		return -1
	}
	num, err := strconv.ParseInt(parts[len(parts)-1], 10, 64)
	if err != nil {
		return -1
	}
	return num
}
