package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

func sampleSettlements() []domain.Settlement {
	periodStart := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Settlement{
		{
			ID:                 "s1",
			ProviderID:         "p1",
			ProviderName:       domain.BilingualName{Ar: "مطعم الشرق", En: "El Sharq Restaurant"},
			PeriodStart:        periodStart,
			PeriodEnd:          periodEnd,
			TotalOrders:        120,
			GrossRevenue:       money.FromPounds(45250.75),
			PlatformCommission: money.FromPounds(3167.55),
			NetAmountDue:       money.FromPounds(3167.55),
			AmountPaid:         money.FromPounds(1000),
			Status:             domain.SettlementPartiallyPaid,
			Direction:          money.DirectionProviderPaysPlatform,
			DueDate:            periodEnd.AddDate(0, 0, 14),
		},
		{
			ID:           "s2",
			ProviderID:   "p2",
			ProviderName: domain.BilingualName{Ar: "كشري التحرير", En: `Koshary "El Tahrir"`},
			PeriodStart:  periodStart,
			PeriodEnd:    periodEnd,
			TotalOrders:  80,
			GrossRevenue: money.FromPounds(18000),
			NetAmountDue: money.FromPounds(900),
			Status:       domain.SettlementPending,
			Direction:    money.DirectionPlatformPaysProvider,
			DueDate:      periodEnd.AddDate(0, 0, 14),
		},
	}
}

func TestCSVStartsWithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSettlementsCSV(&buf, sampleSettlements(), money.LocaleEnglish))
	assert.True(t, strings.HasPrefix(buf.String(), utf8BOM))
}

func TestCSVRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSettlementsCSV(&buf, sampleSettlements(), money.LocaleEnglish))

	// Strip the BOM and parse it back with a real CSV reader.
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(buf.String(), utf8BOM)))
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, csvHeaders[money.LocaleEnglish], records[0])

	row := records[1]
	assert.Equal(t, "s1", row[0])
	assert.Equal(t, "El Sharq Restaurant", row[1])
	assert.Equal(t, "2026-07-01", row[2])
	assert.Equal(t, "45250.75", row[5])
	assert.Equal(t, "Partially Paid", row[9])
	assert.Equal(t, "Provider Pays Platform", row[10])

	// Embedded quotes in the provider name survive.
	assert.Equal(t, `Koshary "El Tahrir"`, records[2][1])
	// Amounts stay machine-parseable.
	back := money.Parse(records[1][5])
	assert.Equal(t, money.FromPounds(45250.75), back)
}

func TestCSVEveryFieldQuoted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSettlementsCSV(&buf, sampleSettlements(), money.LocaleEnglish))

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(buf.String(), utf8BOM), "\n"), "\n")
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, `"`), "line %q", line)
		assert.True(t, strings.HasSuffix(line, `"`), "line %q", line)
	}
}

func TestCSVArabicLocale(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSettlementsCSV(&buf, sampleSettlements(), money.LocaleArabic))
	out := buf.String()

	assert.Contains(t, out, "مطعم الشرق")
	assert.Contains(t, out, "مدفوع جزئياً")
	assert.Contains(t, out, "المزود يدفع للمنصة")
	// Amounts stay in western digits even in the Arabic export.
	assert.Contains(t, out, "45250.75")
}

func TestCSVFilename(t *testing.T) {
	assert.Equal(t, "settlements-2026-08-31.csv",
		CSVFilename(time.Date(2026, 8, 31, 15, 4, 5, 0, time.UTC)))
}

func TestReportIsDeterministic(t *testing.T) {
	opts := ReportOptions{
		Locale:      money.LocaleEnglish,
		GeneratedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}

	var a, b bytes.Buffer
	require.NoError(t, RenderSettlementsReport(&a, sampleSettlements(), opts))
	require.NoError(t, RenderSettlementsReport(&b, sampleSettlements(), opts))
	assert.Equal(t, a.String(), b.String())
}

func TestReportEnglish(t *testing.T) {
	var buf bytes.Buffer
	opts := ReportOptions{
		Locale:      money.LocaleEnglish,
		GeneratedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, RenderSettlementsReport(&buf, sampleSettlements(), opts))
	out := buf.String()

	assert.Contains(t, out, `dir="ltr"`)
	assert.Contains(t, out, "Settlements Report")
	assert.Contains(t, out, "El Sharq Restaurant")
	assert.Contains(t, out, "2026-08-31 10:00")
	// Totals row: 3167.55 + 900 due, 1000 paid.
	assert.Contains(t, out, "4,067.55 EGP")
	assert.Contains(t, out, "1,000.00 EGP")
}

func TestReportArabicIsRTL(t *testing.T) {
	var buf bytes.Buffer
	opts := ReportOptions{
		Locale:      money.LocaleArabic,
		GeneratedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, RenderSettlementsReport(&buf, sampleSettlements(), opts))
	out := buf.String()

	assert.Contains(t, out, `dir="rtl"`)
	assert.Contains(t, out, `lang="ar"`)
	assert.Contains(t, out, "تقرير التسويات")
	assert.Contains(t, out, "مطعم الشرق")
}

func TestSettlementDetailReport(t *testing.T) {
	s := sampleSettlements()[0]
	s.COD.OrdersCount = 70
	s.COD.GrossRevenue = money.FromPounds(30000)
	s.COD.CommissionOwed = money.FromPounds(2100)

	data := ReportData{
		Settlement: s,
		AuditLog: []domain.SettlementAuditEntry{{
			Action:      domain.AuditRecordPartialPayment,
			ActorName:   "Admin One",
			Amount:      money.FromPounds(1000),
			PerformedAt: time.Date(2026, 8, 5, 9, 30, 0, 0, time.UTC),
		}},
	}
	opts := ReportOptions{
		Locale:          money.LocaleEnglish,
		GeneratedAt:     time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		IncludeAuditLog: true,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSettlementReport(&buf, data, opts))
	out := buf.String()

	assert.Contains(t, out, "El Sharq Restaurant")
	assert.Contains(t, out, "Cash on Delivery")
	assert.Contains(t, out, "2,100.00 EGP")
	assert.Contains(t, out, "Audit Trail")
	assert.Contains(t, out, "record_partial_payment")
	assert.Contains(t, out, "2026-08-05 09:30")

	// Without the flag the audit section is omitted entirely.
	opts.IncludeAuditLog = false
	buf.Reset()
	require.NoError(t, RenderSettlementReport(&buf, data, opts))
	assert.NotContains(t, buf.String(), "Audit Trail")
}

func TestSettlementReportIncludedOrders(t *testing.T) {
	data := ReportData{
		Settlement: sampleSettlements()[0],
		Orders: []ReportOrder{
			{
				OrderNumber:   "ORD-1001",
				Total:         money.FromPounds(350.50),
				Commission:    money.FromPounds(24.54),
				PaymentMethod: domain.PaymentCash,
				CreatedAt:     time.Date(2026, 7, 12, 14, 0, 0, 0, time.UTC),
			},
			{
				OrderNumber:   "ORD-1002",
				Total:         money.FromPounds(120),
				Commission:    money.FromPounds(8.40),
				PaymentMethod: domain.PaymentCard,
				CreatedAt:     time.Date(2026, 7, 13, 9, 0, 0, 0, time.UTC),
			},
		},
	}
	opts := ReportOptions{
		Locale:        money.LocaleEnglish,
		GeneratedAt:   time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		IncludeOrders: true,
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSettlementReport(&buf, data, opts))
	out := buf.String()

	assert.Contains(t, out, "Included Orders (2)")
	assert.Contains(t, out, "ORD-1001")
	assert.Contains(t, out, "350.50 EGP")
	assert.Contains(t, out, "Cash")
	assert.Contains(t, out, "Online")
	assert.Contains(t, out, "2026-07-12")

	// Without the flag the order table is omitted even when rows are supplied.
	opts.IncludeOrders = false
	buf.Reset()
	require.NoError(t, RenderSettlementReport(&buf, data, opts))
	assert.NotContains(t, buf.String(), "Included Orders")
	assert.NotContains(t, buf.String(), "ORD-1001")
}

func TestSettlementReportDateFormat(t *testing.T) {
	data := ReportData{Settlement: sampleSettlements()[0]}
	opts := ReportOptions{
		Locale:      money.LocaleEnglish,
		GeneratedAt: time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
		DateFormat:  "02/01/2006",
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSettlementReport(&buf, data, opts))
	assert.Contains(t, buf.String(), "01/07/2026 / 01/08/2026")
}

func TestLabelFallbacks(t *testing.T) {
	assert.Equal(t, "weird", StatusLabel(domain.SettlementStatus("weird"), money.LocaleEnglish))
	assert.Equal(t, "sideways", DirectionLabel(money.Direction("sideways"), money.LocaleArabic))
	assert.Equal(t, "Paid", StatusLabel(domain.SettlementPaid, money.LocaleEnglish))
}
