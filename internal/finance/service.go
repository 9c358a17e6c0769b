package finance

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
	"github.com/engezna/settlement-engine/internal/repository"
)

// providerIDCacheTTL bounds how stale the regional provider-id set may get
// before it is re-read.
const providerIDCacheTTL = 5 * time.Minute

// Repos bundles the data access a Service needs.
type Repos struct {
	Facts       *repository.FactRepo
	Providers   *repository.ProviderRepo
	Settlements *repository.SettlementRepo
	Audit       *repository.AuditRepo
}

// Service answers financial queries for exactly one caller scope: the whole
// platform (admin), a set of governorates (regional admin), or a single
// provider. The scope is fixed at construction and is ANDed into every
// query, so request filters can narrow what a caller sees but never widen
// it.
//
// Reads degrade instead of failing: on a data-source error the service logs
// and returns an empty result, never an error, so a broken finance panel
// does not take a dashboard down with it.
type Service struct {
	repos Repos

	providerID      string
	governorateIDs  []string
	isRegionalAdmin bool

	now func() time.Time

	mu          sync.Mutex
	cachedIDs   []string
	cachedIDsAt time.Time
}

// NewAdminService builds a platform-wide service with no scope restriction.
func NewAdminService(repos Repos) *Service {
	return &Service{repos: repos, now: time.Now}
}

// NewRegionalService builds a service scoped to the given governorates.
func NewRegionalService(repos Repos, governorateIDs []string) *Service {
	return &Service{
		repos:           repos,
		governorateIDs:  governorateIDs,
		isRegionalAdmin: true,
		now:             time.Now,
	}
}

// NewProviderService builds a service scoped to a single provider.
func NewProviderService(repos Repos, providerID string) *Service {
	return &Service{repos: repos, providerID: providerID, now: time.Now}
}

// FinancialFacts returns the fact rows visible to this scope, optionally
// narrowed further by the filters.
func (s *Service) FinancialFacts(ctx context.Context, filters domain.Filters) []domain.FinancialFact {
	f := repository.FactFilter{
		ProviderID:    filters.ProviderID,
		GovernorateID: filters.GovernorateID,
		CityID:        filters.CityID,
	}
	if s.providerID != "" {
		f.ProviderID = s.providerID
	}
	if s.isRegionalAdmin {
		if f.GovernorateID != "" && !s.inScope(f.GovernorateID) {
			return []domain.FinancialFact{}
		}
		if f.GovernorateID == "" {
			f.GovernorateIDs = s.governorateIDs
		}
	}

	facts, err := s.repos.Facts.List(ctx, f)
	if err != nil {
		log.Printf("[finance] list facts: %v", err)
		return []domain.FinancialFact{}
	}
	if facts == nil {
		facts = []domain.FinancialFact{}
	}
	return facts
}

// AdminSummary returns the platform-wide rollup. The unscoped path trusts
// the precomputed aggregate and ignores the filters; a regional scope
// re-aggregates its own facts, narrowed by the caller's filters, so every
// figure goes through the same rounding as the per-provider views.
func (s *Service) AdminSummary(ctx context.Context, filters domain.Filters) *domain.AdminFinancialSummary {
	if !s.isRegionalAdmin {
		summary, err := s.repos.Facts.PlatformAggregate(ctx)
		if err != nil {
			log.Printf("[finance] platform aggregate: %v", err)
			return &domain.AdminFinancialSummary{}
		}
		return summary
	}

	return aggregateFacts(s.FinancialFacts(ctx, filters))
}

// ProviderSummary returns the provider-dashboard view for the scoped
// provider, or nil when the provider has no fact row for the period.
func (s *Service) ProviderSummary(ctx context.Context) *domain.ProviderFinancialSummary {
	if s.providerID == "" {
		return nil
	}

	facts, err := s.repos.Facts.List(ctx, repository.FactFilter{ProviderID: s.providerID})
	if err != nil {
		log.Printf("[finance] provider summary: %v", err)
		return nil
	}
	if len(facts) == 0 {
		return nil
	}
	return providerSummaryFromFact(facts[0])
}

// RegionalSummary returns the rollup for one governorate. A regional admin
// can only ask about governorates inside its scope; anything else comes back
// empty.
func (s *Service) RegionalSummary(ctx context.Context, governorateID string) *domain.RegionalFinancialSummary {
	if s.isRegionalAdmin && !s.inScope(governorateID) {
		return &domain.RegionalFinancialSummary{GovernorateID: governorateID}
	}

	facts, err := s.repos.Facts.List(ctx, repository.FactFilter{GovernorateID: governorateID})
	if err != nil {
		log.Printf("[finance] regional summary: %v", err)
		return &domain.RegionalFinancialSummary{GovernorateID: governorateID}
	}

	summary := &domain.RegionalFinancialSummary{GovernorateID: governorateID}
	var revenue, commission, netBalance money.Money
	for _, f := range facts {
		summary.ProvidersCount++
		summary.TotalOrders += f.TotalOrders
		summary.CODOrders += f.CODOrdersCount
		summary.OnlineOrders += f.OnlineOrdersCount
		revenue = revenue.Add(f.GrossRevenue)
		commission = commission.Add(f.ActualCommission)
		netBalance = netBalance.Add(f.NetBalance)
		switch f.Direction {
		case money.DirectionPlatformPaysProvider:
			summary.ProvidersToPay++
		case money.DirectionProviderPaysPlatform:
			summary.ProvidersToCollect++
		}
	}
	summary.GrossRevenue = revenue
	summary.TotalCommission = commission
	summary.NetBalance = netBalance
	return summary
}

// RegionalSummaries returns one independently aggregated rollup per
// governorate in scope. An unscoped admin gets every governorate that has
// facts.
func (s *Service) RegionalSummaries(ctx context.Context) []domain.RegionalFinancialSummary {
	governorateIDs := s.governorateIDs
	if !s.isRegionalAdmin {
		ids, err := s.repos.Facts.GovernorateIDs(ctx)
		if err != nil {
			log.Printf("[finance] list governorates: %v", err)
			return []domain.RegionalFinancialSummary{}
		}
		governorateIDs = ids
	}

	summaries := make([]domain.RegionalFinancialSummary, 0, len(governorateIDs))
	for _, id := range governorateIDs {
		summaries = append(summaries, *s.RegionalSummary(ctx, id))
	}
	return summaries
}

// Settlements returns the settlement rows visible to this scope, narrowed by
// the filters.
func (s *Service) Settlements(ctx context.Context, filters domain.Filters) []domain.Settlement {
	f := repository.SettlementFilter{
		ProviderID: filters.ProviderID,
		Status:     filters.Status,
		Direction:  filters.Direction,
	}
	if filters.DateRange != nil {
		f.From = &filters.DateRange.Start
		f.To = &filters.DateRange.End
	}
	if s.providerID != "" {
		f.ProviderID = s.providerID
	}
	if s.isRegionalAdmin {
		ids, err := s.providerIDsInScope(ctx)
		if err != nil {
			log.Printf("[finance] resolve region providers: %v", err)
			return []domain.Settlement{}
		}
		if len(ids) == 0 {
			return []domain.Settlement{}
		}
		f.ProviderIDs = ids
	}

	settlements, err := s.repos.Settlements.List(ctx, f)
	if err != nil {
		log.Printf("[finance] list settlements: %v", err)
		return []domain.Settlement{}
	}
	if settlements == nil {
		settlements = []domain.Settlement{}
	}
	return settlements
}

// SettlementByID returns one settlement if it is inside this scope, nil
// otherwise.
func (s *Service) SettlementByID(ctx context.Context, id string) *domain.Settlement {
	settlement, err := s.repos.Settlements.GetByID(ctx, id)
	if err != nil {
		log.Printf("[finance] get settlement %s: %v", id, err)
		return nil
	}

	if s.providerID != "" && settlement.ProviderID != s.providerID {
		return nil
	}
	if s.isRegionalAdmin {
		ids, err := s.providerIDsInScope(ctx)
		if err != nil {
			log.Printf("[finance] resolve region providers: %v", err)
			return nil
		}
		if !contains(ids, settlement.ProviderID) {
			return nil
		}
	}
	return settlement
}

// RecordPayment applies a payment against a settlement in this scope and
// reports whether it was accepted.
func (s *Service) RecordPayment(ctx context.Context, p domain.SettlementPayment) bool {
	if s.SettlementByID(ctx, p.SettlementID) == nil {
		return false
	}
	if err := s.repos.Settlements.RecordPayment(ctx, p); err != nil {
		log.Printf("[finance] record payment on %s: %v", p.SettlementID, err)
		return false
	}
	return true
}

// AuditLog returns a settlement's audit trail, empty when the settlement is
// out of scope or the read fails.
func (s *Service) AuditLog(ctx context.Context, settlementID string) []domain.SettlementAuditEntry {
	if s.SettlementByID(ctx, settlementID) == nil {
		return []domain.SettlementAuditEntry{}
	}
	entries, err := s.repos.Audit.ListBySettlement(ctx, settlementID)
	if err != nil {
		log.Printf("[finance] audit log for %s: %v", settlementID, err)
		return []domain.SettlementAuditEntry{}
	}
	if entries == nil {
		entries = []domain.SettlementAuditEntry{}
	}
	return entries
}

// InvalidateCache drops the cached region provider-id set so the next query
// re-reads it.
func (s *Service) InvalidateCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cachedIDs = nil
	s.cachedIDsAt = time.Time{}
}

func (s *Service) providerIDsInScope(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cachedIDs != nil && s.now().Sub(s.cachedIDsAt) < providerIDCacheTTL {
		return s.cachedIDs, nil
	}

	ids, err := s.repos.Providers.IDsInGovernorates(ctx, s.governorateIDs)
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = []string{}
	}
	s.cachedIDs = ids
	s.cachedIDsAt = s.now()
	return ids, nil
}

func (s *Service) inScope(governorateID string) bool {
	return contains(s.governorateIDs, governorateID)
}

// aggregateFacts rolls fact rows up in Go with Money arithmetic, keeping the
// result on the same rounding path as the per-provider views.
func aggregateFacts(facts []domain.FinancialFact) *domain.AdminFinancialSummary {
	s := &domain.AdminFinancialSummary{TotalProviders: len(facts)}
	for _, f := range facts {
		s.TotalOrders += f.TotalOrders
		s.EligibleOrders += f.EligibleOrders
		s.HeldOrders += f.HeldOrders
		s.SettledOrders += f.SettledOrdersCount

		s.TotalRevenue = s.TotalRevenue.Add(f.GrossRevenue)
		s.TotalDeliveryFees = s.TotalDeliveryFees.Add(f.TotalDeliveryFees)
		s.TotalTheoreticalCommission = s.TotalTheoreticalCommission.Add(f.TheoreticalCommission)
		s.TotalActualCommission = s.TotalActualCommission.Add(f.ActualCommission)
		s.TotalGracePeriodDiscount = s.TotalGracePeriodDiscount.Add(f.GracePeriodDiscount)
		s.TotalRefunds = s.TotalRefunds.Add(f.TotalRefunds)

		s.COD.Orders += f.CODOrdersCount
		s.COD.Revenue = s.COD.Revenue.Add(f.CODGrossRevenue)
		s.COD.CommissionOwed = s.COD.CommissionOwed.Add(f.CODCommissionOwed)

		s.Online.Orders += f.OnlineOrdersCount
		s.Online.Revenue = s.Online.Revenue.Add(f.OnlineGrossRevenue)
		s.Online.PayoutOwed = s.Online.PayoutOwed.Add(f.OnlinePayoutOwed)

		s.TotalNetBalance = s.TotalNetBalance.Add(f.NetBalance)

		switch f.Direction {
		case money.DirectionPlatformPaysProvider:
			s.ProvidersToPay++
		case money.DirectionProviderPaysPlatform:
			s.ProvidersToCollect++
		default:
			s.ProvidersBalanced++
		}
	}
	return s
}

func providerSummaryFromFact(f domain.FinancialFact) *domain.ProviderFinancialSummary {
	return &domain.ProviderFinancialSummary{
		ProviderID:   f.ProviderID,
		ProviderName: f.ProviderName,
		Orders: domain.OrderCounts{
			Total:    f.TotalOrders,
			COD:      f.CODOrdersCount,
			Online:   f.OnlineOrdersCount,
			Eligible: f.EligibleOrders,
			OnHold:   f.HeldOrders,
			Settled:  f.SettledOrdersCount,
		},
		Revenue: domain.RevenueBreakdown{
			Gross:  f.GrossRevenue,
			COD:    f.CODGrossRevenue,
			Online: f.OnlineGrossRevenue,
		},
		Commission: domain.CommissionBreakdown{
			Theoretical:         f.TheoreticalCommission,
			Actual:              f.ActualCommission,
			GracePeriodDiscount: f.GracePeriodDiscount,
			Rate:                f.CommissionRate,
		},
		DeliveryFees: domain.DeliveryFeeBreakdown{
			Total:  f.TotalDeliveryFees,
			COD:    f.CODDeliveryFees,
			Online: f.OnlineDeliveryFees,
		},
		Refunds: domain.RefundBreakdown{
			Total:               f.TotalRefunds,
			CommissionReduction: f.RefundCommissionReduction,
			Percentage:          f.RefundPercentage,
		},
		Settlement: domain.SettlementFigures{
			CODCommissionOwed: f.CODCommissionOwed,
			OnlinePayoutOwed:  f.OnlinePayoutOwed,
			NetBalance:        f.NetBalance,
			Direction:         f.Direction,
		},
		GracePeriod: domain.GracePeriodInfo{
			IsActive:      f.InGracePeriod,
			DaysRemaining: f.GracePeriodDaysRemaining,
			EndDate:       f.GracePeriodEnd,
		},
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
