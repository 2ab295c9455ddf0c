package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"vendura/internal/core/id"
	"vendura/internal/infrastructure/storage/postgres"
)

const employeesTable = "cat_employees"

// EmployeeRepo implements employee.Directory.
type EmployeeRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewEmployeeRepo creates an employee directory.
func NewEmployeeRepo(txm *postgres.TxManager) *EmployeeRepo {
	return &EmployeeRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Exists reports whether an active employee with the id works for the
// tenant.
func (r *EmployeeRepo) Exists(ctx context.Context, tenantID string, employeeID id.ID) (bool, error) {
	sql, args, err := r.builder.
		Select("1").
		From(employeesTable).
		Where(squirrel.Eq{"tenant_id": tenantID, "id": employeeID, "is_active": true}).
		Prefix("SELECT EXISTS (").Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check employee: %w", err)
	}
	return exists, nil
}
