package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

func openTestDB(t *testing.T) (*FactRepo, *ProviderRepo, *SettlementRepo, *AuditRepo) {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewFactRepo(db), NewProviderRepo(db), NewSettlementRepo(db), NewAuditRepo(db)
}

func TestFactRoundTrip(t *testing.T) {
	facts, _, _, _ := openTestDB(t)
	ctx := context.Background()

	graceEnd := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	in := domain.FinancialFact{
		ProviderID:               "p1",
		ProviderName:             domain.BilingualName{Ar: "مطعم", En: "Restaurant"},
		GovernorateID:            "gov-cairo",
		CityID:                   "city-nasr",
		CommissionStatus:         domain.CommissionInGracePeriod,
		CommissionRate:           7.5,
		DeliveryResponsibility:   domain.MerchantDelivery,
		TotalOrders:              42,
		GrossRevenue:             money.FromPounds(1234.56),
		NetBalance:               money.FromPounds(-12.34),
		Direction:                money.DirectionProviderPaysPlatform,
		InGracePeriod:            true,
		GracePeriodDaysRemaining: 15,
		GracePeriodEnd:           &graceEnd,
	}
	require.NoError(t, facts.BulkInsert(ctx, []domain.FinancialFact{in}))

	out, err := facts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, in.ProviderName, out.ProviderName)
	assert.Equal(t, in.CityID, out.CityID)
	assert.Equal(t, money.FromPounds(1234.56), out.GrossRevenue)
	assert.Equal(t, money.FromPounds(-12.34), out.NetBalance)
	assert.True(t, out.InGracePeriod)
	require.NotNil(t, out.GracePeriodEnd)
	assert.True(t, graceEnd.Equal(*out.GracePeriodEnd))
	// Unset monetary columns come back as zero, not as an error.
	assert.True(t, out.TotalSubtotal.IsZero())
}

func TestProviderIDsInGovernorates(t *testing.T) {
	_, providers, _, _ := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, providers.BulkInsert(ctx, []domain.Provider{
		{ID: "p1", Name: domain.BilingualName{En: "A"}, GovernorateID: "gov-cairo"},
		{ID: "p2", Name: domain.BilingualName{En: "B"}, GovernorateID: "gov-giza"},
		{ID: "p3", Name: domain.BilingualName{En: "C"}, GovernorateID: "gov-cairo"},
	}))

	ids, err := providers.IDsInGovernorates(ctx, []string{"gov-cairo"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p3"}, ids)

	ids, err = providers.IDsInGovernorates(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func seedSettlement(t *testing.T, repo *SettlementRepo, id string, status domain.SettlementStatus, periodEnd time.Time) {
	t.Helper()
	require.NoError(t, repo.BulkInsert(context.Background(), []domain.Settlement{{
		ID:           id,
		ProviderID:   "p1",
		ProviderName: domain.BilingualName{En: "Restaurant"},
		PeriodStart:  periodEnd.AddDate(0, -1, 0),
		PeriodEnd:    periodEnd,
		NetAmountDue: money.FromPounds(100),
		Direction:    money.DirectionProviderPaysPlatform,
		Status:       status,
		DueDate:      periodEnd.AddDate(0, 0, 14),
		CreatedAt:    periodEnd,
		UpdatedAt:    periodEnd,
	}}))
}

func TestSettlementFilters(t *testing.T) {
	_, _, settlements, _ := openTestDB(t)
	ctx := context.Background()

	jan := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	seedSettlement(t, settlements, "s-jan", domain.SettlementPaid, jan)
	seedSettlement(t, settlements, "s-jun", domain.SettlementPending, jun)

	// Status filter.
	got, err := settlements.List(ctx, SettlementFilter{Status: []domain.SettlementStatus{domain.SettlementPending}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s-jun", got[0].ID)

	// Date range filter.
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	got, err = settlements.List(ctx, SettlementFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "s-jun", got[0].ID)

	// Newest first.
	got, err = settlements.List(ctx, SettlementFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s-jun", got[0].ID)
}

func TestRecordPaymentErrors(t *testing.T) {
	_, _, settlements, _ := openTestDB(t)
	ctx := context.Background()
	periodEnd := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedSettlement(t, settlements, "s-paid", domain.SettlementPaid, periodEnd)
	seedSettlement(t, settlements, "s-open", domain.SettlementPending, periodEnd)

	err := settlements.RecordPayment(ctx, domain.SettlementPayment{
		SettlementID: "s-open", Amount: money.Zero(), PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	err = settlements.RecordPayment(ctx, domain.SettlementPayment{
		SettlementID: "missing", Amount: money.FromPounds(10), PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrSettlementNotFound)

	err = settlements.RecordPayment(ctx, domain.SettlementPayment{
		SettlementID: "s-paid", Amount: money.FromPounds(10), PaymentMethod: domain.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrSettlementFinalized)

	// Overpayment is allowed and still lands on paid.
	err = settlements.RecordPayment(ctx, domain.SettlementPayment{
		SettlementID: "s-open", Amount: money.FromPounds(150), PaymentMethod: domain.PaymentCash,
	})
	require.NoError(t, err)
	s, err := settlements.GetByID(ctx, "s-open")
	require.NoError(t, err)
	assert.Equal(t, domain.SettlementPaid, s.Status)
	assert.Equal(t, money.FromPounds(150), s.AmountPaid)
}

func TestAuditInsertAndList(t *testing.T) {
	_, _, settlements, audit := openTestDB(t)
	ctx := context.Background()
	periodEnd := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	seedSettlement(t, settlements, "s1", domain.SettlementPending, periodEnd)

	require.NoError(t, audit.Insert(ctx, domain.SettlementAuditEntry{
		SettlementID: "s1",
		Action:       domain.AuditDisputeOpened,
		ActorID:      "admin-1",
		ActorRole:    "admin",
		Reason:       "amount contested",
		PerformedAt:  periodEnd.Add(1 * time.Hour),
	}))
	require.NoError(t, audit.Insert(ctx, domain.SettlementAuditEntry{
		SettlementID: "s1",
		Action:       domain.AuditDisputeResolved,
		ActorID:      "admin-2",
		PerformedAt:  periodEnd.Add(2 * time.Hour),
	}))

	entries, err := audit.ListBySettlement(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.AuditDisputeResolved, entries[0].Action)
	assert.Equal(t, domain.AuditDisputeOpened, entries[1].Action)
	assert.Equal(t, "amount contested", entries[1].Reason)
	assert.NotEmpty(t, entries[0].ID)
}
