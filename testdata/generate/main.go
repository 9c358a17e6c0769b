// Command generate produces the deterministic seed fixtures under testdata/:
// providers.json, financial_facts.json and settlements.json. Re-running it
// always yields the same files.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

type governorate struct {
	id     string
	name   domain.BilingualName
	cities []string
}

var governorates = []governorate{
	{"gov-cairo", domain.BilingualName{Ar: "القاهرة", En: "Cairo"}, []string{"city-nasr", "city-maadi", "city-heliopolis"}},
	{"gov-giza", domain.BilingualName{Ar: "الجيزة", En: "Giza"}, []string{"city-dokki", "city-haram"}},
	{"gov-alexandria", domain.BilingualName{Ar: "الإسكندرية", En: "Alexandria"}, []string{"city-smouha", "city-miami"}},
	{"gov-mansoura", domain.BilingualName{Ar: "المنصورة", En: "Mansoura"}, []string{"city-talkha"}},
}

var providerNames = []domain.BilingualName{
	{Ar: "مطعم الشرق", En: "El Sharq Restaurant"},
	{Ar: "كشري التحرير", En: "Koshary El Tahrir"},
	{Ar: "حلواني العروبة", En: "El Orouba Sweets"},
	{Ar: "مشويات أبو علي", En: "Abu Ali Grills"},
	{Ar: "بيتزا النيل", En: "Nile Pizza"},
	{Ar: "فطاطري الحسين", En: "El Hussein Fateer"},
	{Ar: "سوبر ماركت الأمانة", En: "Al Amana Supermarket"},
	{Ar: "عصائر فريش", En: "Fresh Juices"},
	{Ar: "مخبز الضحى", En: "El Doha Bakery"},
	{Ar: "شاورما دمشق", En: "Damascus Shawarma"},
	{Ar: "أسماك البحر", En: "Sea Fish"},
	{Ar: "كافيه المزاج", En: "El Mazag Cafe"},
	{Ar: "فول وطعمية السلام", En: "El Salam Foul"},
	{Ar: "دجاج الريف", En: "Countryside Chicken"},
	{Ar: "حلويات لابوار", En: "La Poire Desserts"},
	{Ar: "بقالة النور", En: "El Nour Grocery"},
	{Ar: "مطبخ ماما", En: "Mama's Kitchen"},
	{Ar: "برجر هاوس", En: "Burger House"},
}

func main() {
	rng := rand.New(rand.NewSource(42))
	baseDir := findTestdataDir()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	periodStart := now.AddDate(0, -1, 0)

	var providers []domain.Provider
	var facts []domain.FinancialFact
	var settlements []domain.Settlement

	for i, name := range providerNames {
		gov := governorates[i%len(governorates)]
		p := domain.Provider{
			ID:            fmt.Sprintf("prov-%03d", i+1),
			Name:          name,
			GovernorateID: gov.id,
			CityID:        gov.cities[i%len(gov.cities)],
		}
		providers = append(providers, p)

		fact := makeFact(rng, p, now)
		facts = append(facts, fact)

		settlements = append(settlements, makeSettlement(rng, p, fact, periodStart, now))
	}

	writeJSON(filepath.Join(baseDir, "providers.json"), providers)
	writeJSON(filepath.Join(baseDir, "financial_facts.json"), facts)
	writeJSON(filepath.Join(baseDir, "settlements.json"), settlements)

	log.Printf("Wrote %d providers, %d facts, %d settlements to %s",
		len(providers), len(facts), len(settlements), baseDir)
}

func makeFact(rng *rand.Rand, p domain.Provider, now time.Time) domain.FinancialFact {
	rate := float64(5 + rng.Intn(11)) // 5..15 percent

	totalOrders := 40 + rng.Intn(160)
	codOrders := int(float64(totalOrders) * (0.55 + rng.Float64()*0.25))
	onlineOrders := totalOrders - codOrders
	held := rng.Intn(totalOrders / 10)
	settled := rng.Intn(totalOrders / 4)
	eligible := totalOrders - held - settled

	avgOrder := 120 + rng.Float64()*180
	subtotal := money.FromPounds(avgOrder * float64(totalOrders))
	codShare := float64(codOrders) / float64(totalOrders)

	deliveryFees := money.FromPounds(float64(totalOrders) * (15 + rng.Float64()*20))
	discounts := subtotal.Percent(rng.Float64() * 5)

	gross := subtotal.Add(deliveryFees)
	codGross := gross.Multiply(codShare)
	onlineGross := gross.Subtract(codGross)

	theoretical := money.Commission(subtotal, discounts, rate)

	// Roughly a third of providers are still inside their grace period.
	status := domain.CommissionActive
	actual := theoretical
	var graceDiscount money.Money
	inGrace := rng.Intn(3) == 0
	daysRemaining := 0
	var graceEnd *time.Time
	if inGrace {
		status = domain.CommissionInGracePeriod
		actual = money.Zero()
		graceDiscount = theoretical
		daysRemaining = 1 + rng.Intn(30)
		t := now.AddDate(0, 0, daysRemaining)
		graceEnd = &t
	}

	refunds := gross.Percent(rng.Float64() * 3)
	refundReduction := money.RefundCommissionReduction(refunds, subtotal.Subtract(discounts), actual)
	refundPct := 0.0
	if !gross.IsZero() {
		refundPct = refunds.Pounds() / gross.Pounds() * 100
	}

	codCommission := actual.Multiply(codShare).Subtract(refundReduction.Multiply(codShare))
	onlinePayout := onlineGross.Subtract(actual.Subtract(actual.Multiply(codShare)))
	netBalance := money.NetBalance(onlinePayout, codCommission)

	return domain.FinancialFact{
		ProviderID:             p.ID,
		ProviderName:           p.Name,
		GovernorateID:          p.GovernorateID,
		CityID:                 p.CityID,
		CommissionStatus:       status,
		CommissionRate:         rate,
		DeliveryResponsibility: domain.PlatformDelivery,

		TotalOrders:        totalOrders,
		CODOrdersCount:     codOrders,
		OnlineOrdersCount:  onlineOrders,
		EligibleOrders:     eligible,
		HeldOrders:         held,
		SettledOrdersCount: settled,

		GrossRevenue:       gross,
		CODGrossRevenue:    codGross,
		OnlineGrossRevenue: onlineGross,
		TotalSubtotal:      subtotal,

		TotalDeliveryFees:  deliveryFees,
		CODDeliveryFees:    deliveryFees.Multiply(codShare),
		OnlineDeliveryFees: deliveryFees.Subtract(deliveryFees.Multiply(codShare)),

		TotalDiscounts: discounts,

		TheoreticalCommission: theoretical,
		ActualCommission:      actual,
		GracePeriodDiscount:   graceDiscount,

		TotalRefunds:              refunds,
		RefundCommissionReduction: refundReduction,
		RefundPercentage:          refundPct,

		CODCommissionOwed: codCommission,
		OnlinePayoutOwed:  onlinePayout,
		NetBalance:        netBalance,
		Direction:         money.SettlementDirection(netBalance),

		InGracePeriod:            inGrace,
		GracePeriodDaysRemaining: daysRemaining,
		GracePeriodEnd:           graceEnd,
	}
}

func makeSettlement(rng *rand.Rand, p domain.Provider, f domain.FinancialFact, periodStart, periodEnd time.Time) domain.Settlement {
	netDue := f.NetBalance.Abs()

	// Status distribution: most pending, some partially paid, some paid.
	status := domain.SettlementPending
	paid := money.Zero()
	var paymentDate *time.Time
	switch rng.Intn(5) {
	case 0:
		status = domain.SettlementPaid
		paid = netDue
		t := periodEnd.AddDate(0, 0, rng.Intn(5)+1)
		paymentDate = &t
	case 1:
		status = domain.SettlementPartiallyPaid
		paid = netDue.Multiply(0.25 + rng.Float64()*0.5)
		t := periodEnd.AddDate(0, 0, rng.Intn(5)+1)
		paymentDate = &t
	}

	dueDate := periodEnd.AddDate(0, 0, 14)

	return domain.Settlement{
		ID:           uuidFrom(rng),
		ProviderID:   p.ID,
		ProviderName: p.Name,
		PeriodStart:  periodStart,
		PeriodEnd:    periodEnd,

		TotalOrders:           f.TotalOrders,
		GrossRevenue:          f.GrossRevenue,
		PlatformCommission:    f.ActualCommission,
		DeliveryFeesCollected: f.TotalDeliveryFees,
		NetAmountDue:          netDue,

		COD: domain.SettlementCOD{
			OrdersCount:    f.CODOrdersCount,
			GrossRevenue:   f.CODGrossRevenue,
			CommissionOwed: f.CODCommissionOwed,
		},
		Online: domain.SettlementOnline{
			OrdersCount:        f.OnlineOrdersCount,
			GrossRevenue:       f.OnlineGrossRevenue,
			PlatformCommission: f.ActualCommission.Subtract(f.CODCommissionOwed).NonNegative(),
			PayoutOwed:         f.OnlinePayoutOwed,
		},

		NetBalance: f.NetBalance,
		Direction:  f.Direction,

		Status:      status,
		AmountPaid:  paid,
		PaymentDate: paymentDate,

		DueDate:   dueDate,
		CreatedAt: periodEnd,
		UpdatedAt: periodEnd,
	}
}

// uuidFrom derives a stable uuid from the deterministic rng.
func uuidFrom(rng *rand.Rand) string {
	var b [16]byte
	rng.Read(b[:])
	id, err := uuid.FromBytes(b[:])
	if err != nil {
		log.Fatalf("derive uuid: %v", err)
	}
	return id.String()
}

func writeJSON(path string, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("marshal %s: %v", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("write %s: %v", path, err)
	}
}

func findTestdataDir() string {
	candidates := []string{"testdata", filepath.Join("..", "..", "testdata")}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && st.IsDir() {
			return c
		}
	}
	if err := os.MkdirAll("testdata", 0o755); err != nil {
		log.Fatalf("create testdata dir: %v", err)
	}
	return "testdata"
}
