// Package employee provides the staff directory consulted by the
// staff-discount rule.
package employee

import (
	"context"
	"time"

	"vendura/internal/core/id"
)

// Employee is one staff member of a tenant.
type Employee struct {
	ID       id.ID  `db:"id" json:"id"`
	TenantID string `db:"tenant_id" json:"tenantId"`

	FullName  string    `db:"full_name" json:"fullName"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Directory answers existence checks for staff-discount eligibility.
type Directory interface {
	Exists(ctx context.Context, tenantID string, employeeID id.ID) (bool, error)
}
