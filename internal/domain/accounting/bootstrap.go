package accounting

import (
	"context"
	"fmt"
	"time"

	"vendura/internal/core/id"
	"vendura/pkg/logger"
)

// Bootstrapper seeds the default chart of accounts for a tenant.
type Bootstrapper struct {
	repo Repository
}

// NewBootstrapper creates a bootstrapper.
func NewBootstrapper(repo Repository) *Bootstrapper {
	return &Bootstrapper{repo: repo}
}

// EnsureChart seeds the default accounts when the tenant has none.
// Idempotent: a tenant that already has accounts is left untouched.
func (b *Bootstrapper) EnsureChart(ctx context.Context, tenantID string) error {
	existing, err := b.repo.ListAccounts(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("list accounts: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	accounts := make([]Account, 0, len(defaultAccounts))
	for _, d := range defaultAccounts {
		accounts = append(accounts, Account{
			ID:        id.New(),
			TenantID:  tenantID,
			Name:      d.Name,
			Type:      d.Type,
			CreatedAt: now,
		})
	}
	if err := b.repo.CreateAccounts(ctx, accounts); err != nil {
		return fmt.Errorf("seed chart of accounts: %w", err)
	}
	logger.Info(ctx, "chart of accounts seeded", "tenant_id", tenantID, "accounts", len(accounts))
	return nil
}
