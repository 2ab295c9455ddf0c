package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendura/internal/core/apperror"
	"vendura/internal/core/id"
)

type fakeRepo struct {
	rows      map[id.ID]*Row
	movements []Movement
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{rows: make(map[id.ID]*Row)}
}

func (f *fakeRepo) Get(ctx context.Context, tenantID string, productID id.ID) (*Row, error) {
	return f.rows[productID], nil
}

func (f *fakeRepo) Decrement(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, int64, error) {
	r, ok := f.rows[productID]
	if !ok {
		return 0, 0, apperror.NewNoInventoryRow(productID)
	}
	if r.Quantity < qty {
		return 0, 0, apperror.NewInsufficientStock(productID, qty, r.Quantity)
	}
	r.Quantity -= qty
	return r.Quantity, r.ReorderLevel, nil
}

func (f *fakeRepo) Increase(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error) {
	r, ok := f.rows[productID]
	if !ok {
		return 0, apperror.NewNoInventoryRow(productID)
	}
	r.Quantity += qty
	return r.Quantity, nil
}

func (f *fakeRepo) IncreaseOrCreate(ctx context.Context, tenantID string, productID id.ID, qty int64) (int64, error) {
	r, ok := f.rows[productID]
	if !ok {
		f.rows[productID] = &Row{TenantID: tenantID, ProductID: productID, Quantity: qty}
		return qty, nil
	}
	r.Quantity += qty
	return r.Quantity, nil
}

func (f *fakeRepo) AppendMovements(ctx context.Context, movements []Movement) error {
	f.movements = append(f.movements, movements...)
	return nil
}

func (f *fakeRepo) ListMovements(ctx context.Context, tenantID string, productID *id.ID, limit uint64) ([]Movement, error) {
	return f.movements, nil
}

var _ Repository = (*fakeRepo)(nil)

func TestDeductForSale(t *testing.T) {
	repo := newFakeRepo()
	pid := id.New()
	repo.rows[pid] = &Row{TenantID: "t1", ProductID: pid, Quantity: 10, ReorderLevel: 2}
	m := NewManager(repo)

	invoiceID := id.New()
	alerts, err := m.DeductForSale(context.Background(), "t1", invoiceID,
		[]Line{{ProductID: pid, Qty: 3}}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, alerts)
	assert.Equal(t, int64(7), repo.rows[pid].Quantity)

	require.Len(t, repo.movements, 1)
	mv := repo.movements[0]
	assert.Equal(t, MoveSale, mv.MovementType)
	assert.Equal(t, int64(-3), mv.Quantity)
	assert.Equal(t, RefSalesInvoices, mv.ReferenceTable)
	assert.Equal(t, invoiceID, mv.ReferenceID)
}

func TestDeductForSaleLowStock(t *testing.T) {
	repo := newFakeRepo()
	pid := id.New()
	repo.rows[pid] = &Row{TenantID: "t1", ProductID: pid, Quantity: 5, ReorderLevel: 3}
	m := NewManager(repo)

	alerts, err := m.DeductForSale(context.Background(), "t1", id.New(),
		[]Line{{ProductID: pid, Qty: 2}}, time.Now())
	require.NoError(t, err)

	// New quantity 3 equals the reorder level, which already alerts.
	require.Len(t, alerts, 1)
	assert.Equal(t, pid, alerts[0].ProductID)
	assert.Equal(t, int64(3), alerts[0].NewQty)
	assert.Equal(t, int64(3), alerts[0].ReorderLevel)
}

func TestDeductForSaleRefusals(t *testing.T) {
	repo := newFakeRepo()
	pid := id.New()
	repo.rows[pid] = &Row{TenantID: "t1", ProductID: pid, Quantity: 1}
	m := NewManager(repo)

	_, err := m.DeductForSale(context.Background(), "t1", id.New(),
		[]Line{{ProductID: pid, Qty: 2}}, time.Now())
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	_, err = m.DeductForSale(context.Background(), "t1", id.New(),
		[]Line{{ProductID: id.New(), Qty: 1}}, time.Now())
	assert.True(t, apperror.HasCode(err, apperror.CodeNoInventoryRow))

	// Nothing was journaled on either refusal.
	assert.Empty(t, repo.movements)
}

func TestReceiveForPurchaseCreatesRow(t *testing.T) {
	repo := newFakeRepo()
	pid := id.New()
	m := NewManager(repo)

	purchaseID := id.New()
	require.NoError(t, m.ReceiveForPurchase(context.Background(), "t1", purchaseID,
		[]Line{{ProductID: pid, Qty: 10}}, time.Now()))

	assert.Equal(t, int64(10), repo.rows[pid].Quantity)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, MovePurchase, repo.movements[0].MovementType)
	assert.Equal(t, int64(10), repo.movements[0].Quantity)
}

func TestRestockForReturn(t *testing.T) {
	repo := newFakeRepo()
	pid := id.New()
	repo.rows[pid] = &Row{TenantID: "t1", ProductID: pid, Quantity: 4}
	m := NewManager(repo)

	require.NoError(t, m.RestockForReturn(context.Background(), "t1", id.New(),
		[]Line{{ProductID: pid, Qty: 2}}, time.Now()))

	assert.Equal(t, int64(6), repo.rows[pid].Quantity)
	assert.Equal(t, MoveSaleReturn, repo.movements[0].MovementType)
	assert.Equal(t, int64(2), repo.movements[0].Quantity)
}
