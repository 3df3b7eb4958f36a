package service_test

import (
	"context"
	"testing"
	"time"

	"cashdesk/internal/dto"
	"cashdesk/internal/model"
	"cashdesk/internal/reconcile"
	"cashdesk/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saleEnv struct {
	sessions *fakeSessionRepo
	ledger   *fakeLedgerRepo
	sales    *fakeSaleRepo
	counters *fakeCounterRepo
	events   *fakeEvents
	svc      service.SaleService
}

func newSaleEnv() *saleEnv {
	env := &saleEnv{
		sessions: newFakeSessionRepo(),
		ledger:   newFakeLedgerRepo(),
		sales:    newFakeSaleRepo(),
		counters: newFakeCounterRepo(),
		events:   &fakeEvents{},
	}
	// nil db: the fakes run the transaction body directly
	env.svc = service.NewSaleService(nil, env.sales, env.counters, env.ledger, env.sessions, time.UTC, env.events)
	return env
}

func (e *saleEnv) openToday() string {
	today := reconcile.DayOf(time.Now(), time.UTC)
	e.sessions.seed(&model.CashSession{
		Date:           today,
		Status:         model.SessionOpen,
		OpeningBalance: decimal.Zero,
		OpenedAt:       time.Now(),
		OpenedBy:       cashier.Name,
	})
	return today
}

func TestCreateSaleWithInitialPayment(t *testing.T) {
	env := newSaleEnv()
	today := env.openToday()

	sale, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client:  "Blue Cafe",
		Total:   decimal.NewFromInt(300),
		Payment: decimal.NewFromInt(120),
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, sale.Number)
	assert.True(t, sale.Paid.Equal(decimal.NewFromInt(120)))
	assert.True(t, sale.Remaining.Equal(decimal.NewFromInt(180)))

	// The payment landed in the ledger as a positive sale entry linked to the sale
	start, end, err := reconcile.DayRange(today, time.UTC)
	require.NoError(t, err)
	entries, err := env.ledger.ListRange(context.Background(), start, end, true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.EntrySale, entries[0].Type)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(120)))
	require.NotNil(t, entries[0].RelatedID)
	assert.Equal(t, sale.ID, entries[0].RelatedID.String())
}

func TestCreateSaleWithoutPaymentWritesNoEntry(t *testing.T) {
	env := newSaleEnv()
	today := env.openToday()

	sale, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client: "Walk-in", Total: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	assert.True(t, sale.Remaining.Equal(decimal.NewFromInt(50)))

	start, end, _ := reconcile.DayRange(today, time.UTC)
	entries, err := env.ledger.ListRange(context.Background(), start, end, true)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateSaleValidation(t *testing.T) {
	env := newSaleEnv()
	env.openToday()

	_, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client: "X", Total: decimal.Zero,
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client: "X", Total: decimal.NewFromInt(100), Payment: decimal.NewFromInt(150),
	})
	assert.ErrorIs(t, err, service.ErrValidation, "initial payment above total")
}

func TestCreateSaleRequiresOpenSession(t *testing.T) {
	env := newSaleEnv()

	_, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client: "X", Total: decimal.NewFromInt(100),
	})
	assert.ErrorIs(t, err, service.ErrStateConflict)
}

func TestSaleNumbersAreSequential(t *testing.T) {
	env := newSaleEnv()
	env.openToday()

	for want := int64(1); want <= 3; want++ {
		sale, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
			Client: "X", Total: decimal.NewFromInt(10),
		})
		require.NoError(t, err)
		assert.Equal(t, want, sale.Number)
	}
}

func TestAddPayment(t *testing.T) {
	env := newSaleEnv()
	today := env.openToday()

	sale, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client: "Blue Cafe", Total: decimal.NewFromInt(300), Payment: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	id := uuid.MustParse(sale.ID)

	updated, err := env.svc.AddPayment(context.Background(), cashier, id, dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)
	assert.True(t, updated.Paid.Equal(decimal.NewFromInt(300)))
	assert.True(t, updated.Remaining.IsZero())

	// Two ledger entries now: the initial payment and this one
	start, end, _ := reconcile.DayRange(today, time.UTC)
	entries, err := env.ledger.ListRange(context.Background(), start, end, true)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestAddPaymentCannotExceedRemaining(t *testing.T) {
	env := newSaleEnv()
	env.openToday()

	sale, err := env.svc.Create(context.Background(), cashier, dto.CreateSaleRequest{
		Client: "X", Total: decimal.NewFromInt(100), Payment: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	_, err = env.svc.AddPayment(context.Background(), cashier, uuid.MustParse(sale.ID), dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(30),
	})
	assert.ErrorIs(t, err, service.ErrValidation)

	// Nothing moved
	stored, err := env.svc.Get(context.Background(), uuid.MustParse(sale.ID))
	require.NoError(t, err)
	assert.True(t, stored.Paid.Equal(decimal.NewFromInt(80)))
}

func TestAddPaymentUnknownSale(t *testing.T) {
	env := newSaleEnv()
	env.openToday()

	_, err := env.svc.AddPayment(context.Background(), cashier, uuid.New(), dto.AddPaymentRequest{
		Amount: decimal.NewFromInt(10),
	})
	assert.ErrorIs(t, err, service.ErrNotFound)
}
