package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

// ReportOptions configures the printable settlement reports. GeneratedAt is
// part of the input so rendering the same data twice produces byte-identical
// output.
type ReportOptions struct {
	Locale          money.Locale
	Title           string
	GeneratedAt     time.Time
	IncludeOrders   bool
	IncludeAuditLog bool
	DateFormat      string
}

func (o ReportOptions) dateFormat() string {
	if o.DateFormat == "" {
		return "2006-01-02"
	}
	return o.DateFormat
}

// ReportOrder is one order line on the single-settlement report. The order
// list is supplied by the caller; this engine does not read order rows
// itself.
type ReportOrder struct {
	OrderNumber   string
	Total         money.Money
	Commission    money.Money
	PaymentMethod domain.PaymentMethod
	CreatedAt     time.Time
}

// ReportData bundles everything the single-settlement report needs.
type ReportData struct {
	Settlement domain.Settlement
	Orders     []ReportOrder
	AuditLog   []domain.SettlementAuditEntry
}

type reportRow struct {
	Provider     string
	Period       string
	TotalOrders  int
	GrossRevenue string
	Commission   string
	NetDue       string
	AmountPaid   string
	Status       string
	Direction    string
}

type reportData struct {
	Title       string
	Dir         string
	Lang        string
	GeneratedAt string

	Count        int
	TotalNetDue  string
	TotalPaid    string
	TotalBalance string

	Rows []reportRow

	LabelProvider    string
	LabelPeriod      string
	LabelOrders      string
	LabelRevenue     string
	LabelCommission  string
	LabelNetDue      string
	LabelPaid        string
	LabelStatus      string
	LabelDirection   string
	LabelSettlements string
	LabelGeneratedAt string
}

var reportLabels = map[money.Locale]map[string]string{
	money.LocaleArabic: {
		"title":       "تقرير التسويات",
		"provider":    "المزود",
		"period":      "الفترة",
		"orders":      "الطلبات",
		"revenue":     "الإيرادات",
		"commission":  "العمولة",
		"netDue":      "صافي المستحق",
		"paid":        "المدفوع",
		"status":      "الحالة",
		"direction":   "الاتجاه",
		"settlements": "تسوية",
		"generatedAt": "تاريخ الإنشاء",
	},
	money.LocaleEnglish: {
		"title":       "Settlements Report",
		"provider":    "Provider",
		"period":      "Period",
		"orders":      "Orders",
		"revenue":     "Revenue",
		"commission":  "Commission",
		"netDue":      "Net Due",
		"paid":        "Paid",
		"status":      "Status",
		"direction":   "Direction",
		"settlements": "settlements",
		"generatedAt": "Generated at",
	},
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; color: #1a1a1a; }
h1 { font-size: 20px; }
.meta { color: #555; font-size: 13px; margin-bottom: 16px; }
table { border-collapse: collapse; width: 100%; font-size: 13px; }
th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: start; }
th { background: #f3f3f3; }
tfoot td { font-weight: bold; background: #fafafa; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.Count}} {{.LabelSettlements}} &middot; {{.LabelGeneratedAt}}: {{.GeneratedAt}}</div>
<table>
<thead>
<tr>
<th>{{.LabelProvider}}</th>
<th>{{.LabelPeriod}}</th>
<th>{{.LabelOrders}}</th>
<th>{{.LabelRevenue}}</th>
<th>{{.LabelCommission}}</th>
<th>{{.LabelNetDue}}</th>
<th>{{.LabelPaid}}</th>
<th>{{.LabelStatus}}</th>
<th>{{.LabelDirection}}</th>
</tr>
</thead>
<tbody>
{{range .Rows}}<tr>
<td>{{.Provider}}</td>
<td>{{.Period}}</td>
<td>{{.TotalOrders}}</td>
<td>{{.GrossRevenue}}</td>
<td>{{.Commission}}</td>
<td>{{.NetDue}}</td>
<td>{{.AmountPaid}}</td>
<td>{{.Status}}</td>
<td>{{.Direction}}</td>
</tr>
{{end}}</tbody>
<tfoot>
<tr>
<td colspan="5">{{.LabelNetDue}} / {{.LabelPaid}}</td>
<td>{{.TotalNetDue}}</td>
<td>{{.TotalPaid}}</td>
<td colspan="2">{{.TotalBalance}}</td>
</tr>
</tfoot>
</table>
</body>
</html>
`))

// RenderSettlementsReport writes a printable HTML report for the given
// settlements.
func RenderSettlementsReport(w io.Writer, settlements []domain.Settlement, opts ReportOptions) error {
	labels := reportLabels[opts.Locale]
	if labels == nil {
		labels = reportLabels[money.LocaleEnglish]
	}

	data := reportData{
		Title:       opts.Title,
		Dir:         "ltr",
		Lang:        "en",
		GeneratedAt: opts.GeneratedAt.Format("2006-01-02 15:04"),
		Count:       len(settlements),

		LabelProvider:    labels["provider"],
		LabelPeriod:      labels["period"],
		LabelOrders:      labels["orders"],
		LabelRevenue:     labels["revenue"],
		LabelCommission:  labels["commission"],
		LabelNetDue:      labels["netDue"],
		LabelPaid:        labels["paid"],
		LabelStatus:      labels["status"],
		LabelDirection:   labels["direction"],
		LabelSettlements: labels["settlements"],
		LabelGeneratedAt: labels["generatedAt"],
	}
	if opts.Locale == money.LocaleArabic {
		data.Dir = "rtl"
		data.Lang = "ar"
	}
	if data.Title == "" {
		data.Title = labels["title"]
	}

	df := opts.dateFormat()
	var totalDue, totalPaid money.Money
	for _, s := range settlements {
		totalDue = totalDue.Add(s.NetAmountDue)
		totalPaid = totalPaid.Add(s.AmountPaid)
		data.Rows = append(data.Rows, reportRow{
			Provider:     s.ProviderName.Get(opts.Locale),
			Period:       s.PeriodStart.Format(df) + " / " + s.PeriodEnd.Format(df),
			TotalOrders:  s.TotalOrders,
			GrossRevenue: s.GrossRevenue.FormatWithSeparators(opts.Locale),
			Commission:   s.PlatformCommission.FormatWithSeparators(opts.Locale),
			NetDue:       s.NetAmountDue.FormatWithSeparators(opts.Locale),
			AmountPaid:   s.AmountPaid.FormatWithSeparators(opts.Locale),
			Status:       StatusLabel(s.Status, opts.Locale),
			Direction:    DirectionLabel(s.Direction, opts.Locale),
		})
	}
	data.TotalNetDue = totalDue.FormatWithSeparators(opts.Locale)
	data.TotalPaid = totalPaid.FormatWithSeparators(opts.Locale)
	data.TotalBalance = totalDue.Subtract(totalPaid).FormatWithSeparators(opts.Locale)

	if err := reportTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
