package export

import (
	"fmt"
	"html/template"
	"io"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

var detailLabels = map[money.Locale]map[string]string{
	money.LocaleArabic: {
		"title":       "تسوية",
		"period":      "الفترة",
		"status":      "الحالة",
		"direction":   "الاتجاه",
		"dueDate":     "تاريخ الاستحقاق",
		"figures":     "الأرقام",
		"grossRev":    "إجمالي الإيرادات",
		"commission":  "عمولة المنصة",
		"delivery":    "رسوم التوصيل",
		"netDue":      "صافي المستحق",
		"paid":        "المدفوع",
		"codSection":  "الدفع عند الاستلام",
		"onlSection":  "الدفع الإلكتروني",
		"orders":      "الطلبات",
		"payout":      "المستحق للمزود",
		"ordersSec":   "الطلبات المشمولة",
		"orderNumber": "رقم الطلب",
		"method":      "طريقة الدفع",
		"cash":        "نقدي",
		"online":      "إلكتروني",
		"audit":       "سجل العمليات",
		"action":      "الإجراء",
		"actor":       "المنفذ",
		"amount":      "المبلغ",
		"reference":   "المرجع",
		"date":        "التاريخ",
		"generatedAt": "تاريخ الإنشاء",
	},
	money.LocaleEnglish: {
		"title":       "Settlement",
		"period":      "Period",
		"status":      "Status",
		"direction":   "Direction",
		"dueDate":     "Due Date",
		"figures":     "Figures",
		"grossRev":    "Gross Revenue",
		"commission":  "Platform Commission",
		"delivery":    "Delivery Fees",
		"netDue":      "Net Amount Due",
		"paid":        "Amount Paid",
		"codSection":  "Cash on Delivery",
		"onlSection":  "Online Payments",
		"orders":      "Orders",
		"payout":      "Payout Owed",
		"ordersSec":   "Included Orders",
		"orderNumber": "Order #",
		"method":      "Payment Method",
		"cash":        "Cash",
		"online":      "Online",
		"audit":       "Audit Trail",
		"action":      "Action",
		"actor":       "Actor",
		"amount":      "Amount",
		"reference":   "Reference",
		"date":        "Date",
		"generatedAt": "Generated at",
	},
}

type detailOrderRow struct {
	OrderNumber string
	Total       string
	Commission  string
	Method      string
	CreatedAt   string
}

type detailAuditRow struct {
	Action      string
	Actor       string
	Amount      string
	Reference   string
	PerformedAt string
}

type detailData struct {
	L    map[string]string
	Dir  string
	Lang string

	Title       string
	Provider    string
	Period      string
	Status      string
	Direction   string
	DueDate     string
	GeneratedAt string

	GrossRevenue string
	Commission   string
	DeliveryFees string
	NetDue       string
	AmountPaid   string

	CODOrders     int
	CODRevenue    string
	CODCommission string

	OnlineOrders     int
	OnlineRevenue    string
	OnlinePayout     string
	OnlineCommission string

	Orders []detailOrderRow
	Audit  []detailAuditRow
}

var detailTmpl = template.Must(template.New("settlement").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}" dir="{{.Dir}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 24px; color: #1a1a1a; }
h1 { font-size: 20px; }
h2 { font-size: 15px; margin-top: 24px; }
.meta { color: #555; font-size: 13px; margin-bottom: 16px; }
table { border-collapse: collapse; min-width: 50%; font-size: 13px; }
th, td { border: 1px solid #ccc; padding: 6px 8px; text-align: start; }
th { background: #f3f3f3; }
.net { font-weight: bold; }
</style>
</head>
<body>
<h1>{{.Title}} — {{.Provider}}</h1>
<div class="meta">{{.L.period}}: {{.Period}} &middot; {{.L.status}}: {{.Status}} &middot; {{.L.direction}}: {{.Direction}} &middot; {{.L.dueDate}}: {{.DueDate}}</div>
<h2>{{.L.figures}}</h2>
<table>
<tr><th>{{.L.grossRev}}</th><td>{{.GrossRevenue}}</td></tr>
<tr><th>{{.L.commission}}</th><td>{{.Commission}}</td></tr>
<tr><th>{{.L.delivery}}</th><td>{{.DeliveryFees}}</td></tr>
<tr class="net"><th>{{.L.netDue}}</th><td>{{.NetDue}}</td></tr>
<tr><th>{{.L.paid}}</th><td>{{.AmountPaid}}</td></tr>
</table>
<h2>{{.L.codSection}}</h2>
<table>
<tr><th>{{.L.orders}}</th><td>{{.CODOrders}}</td></tr>
<tr><th>{{.L.grossRev}}</th><td>{{.CODRevenue}}</td></tr>
<tr><th>{{.L.commission}}</th><td>{{.CODCommission}}</td></tr>
</table>
<h2>{{.L.onlSection}}</h2>
<table>
<tr><th>{{.L.orders}}</th><td>{{.OnlineOrders}}</td></tr>
<tr><th>{{.L.grossRev}}</th><td>{{.OnlineRevenue}}</td></tr>
<tr><th>{{.L.commission}}</th><td>{{.OnlineCommission}}</td></tr>
<tr><th>{{.L.payout}}</th><td>{{.OnlinePayout}}</td></tr>
</table>
{{if .Orders}}<h2>{{.L.ordersSec}} ({{len .Orders}})</h2>
<table>
<tr><th>{{.L.orderNumber}}</th><th>{{.L.amount}}</th><th>{{.L.commission}}</th><th>{{.L.method}}</th><th>{{.L.date}}</th></tr>
{{range .Orders}}<tr><td>{{.OrderNumber}}</td><td>{{.Total}}</td><td>{{.Commission}}</td><td>{{.Method}}</td><td>{{.CreatedAt}}</td></tr>
{{end}}</table>
{{end}}{{if .Audit}}<h2>{{.L.audit}}</h2>
<table>
<tr><th>{{.L.date}}</th><th>{{.L.action}}</th><th>{{.L.actor}}</th><th>{{.L.amount}}</th><th>{{.L.reference}}</th></tr>
{{range .Audit}}<tr><td>{{.PerformedAt}}</td><td>{{.Action}}</td><td>{{.Actor}}</td><td>{{.Amount}}</td><td>{{.Reference}}</td></tr>
{{end}}</table>
{{end}}<div class="meta">{{.L.generatedAt}}: {{.GeneratedAt}}</div>
</body>
</html>
`))

// RenderSettlementReport writes the printable detail page for one
// settlement, with its audit trail when opts.IncludeAuditLog is set.
func RenderSettlementReport(w io.Writer, data ReportData, opts ReportOptions) error {
	labels := detailLabels[opts.Locale]
	if labels == nil {
		labels = detailLabels[money.LocaleEnglish]
	}
	df := opts.dateFormat()
	s := data.Settlement

	d := detailData{
		L:    labels,
		Dir:  "ltr",
		Lang: "en",

		Title:       labels["title"],
		Provider:    s.ProviderName.Get(opts.Locale),
		Period:      s.PeriodStart.Format(df) + " / " + s.PeriodEnd.Format(df),
		Status:      StatusLabel(s.Status, opts.Locale),
		Direction:   DirectionLabel(s.Direction, opts.Locale),
		DueDate:     s.DueDate.Format(df),
		GeneratedAt: opts.GeneratedAt.Format("2006-01-02 15:04"),

		GrossRevenue: s.GrossRevenue.FormatWithSeparators(opts.Locale),
		Commission:   s.PlatformCommission.FormatWithSeparators(opts.Locale),
		DeliveryFees: s.DeliveryFeesCollected.FormatWithSeparators(opts.Locale),
		NetDue:       s.NetAmountDue.FormatWithSeparators(opts.Locale),
		AmountPaid:   s.AmountPaid.FormatWithSeparators(opts.Locale),

		CODOrders:     s.COD.OrdersCount,
		CODRevenue:    s.COD.GrossRevenue.FormatWithSeparators(opts.Locale),
		CODCommission: s.COD.CommissionOwed.FormatWithSeparators(opts.Locale),

		OnlineOrders:     s.Online.OrdersCount,
		OnlineRevenue:    s.Online.GrossRevenue.FormatWithSeparators(opts.Locale),
		OnlineCommission: s.Online.PlatformCommission.FormatWithSeparators(opts.Locale),
		OnlinePayout:     s.Online.PayoutOwed.FormatWithSeparators(opts.Locale),
	}
	if opts.Locale == money.LocaleArabic {
		d.Dir = "rtl"
		d.Lang = "ar"
	}
	if opts.Title != "" {
		d.Title = opts.Title
	}

	if opts.IncludeOrders {
		for _, o := range data.Orders {
			method := labels["online"]
			if o.PaymentMethod == domain.PaymentCash {
				method = labels["cash"]
			}
			d.Orders = append(d.Orders, detailOrderRow{
				OrderNumber: o.OrderNumber,
				Total:       o.Total.FormatWithSeparators(opts.Locale),
				Commission:  o.Commission.FormatWithSeparators(opts.Locale),
				Method:      method,
				CreatedAt:   o.CreatedAt.Format(df),
			})
		}
	}

	if opts.IncludeAuditLog {
		for _, e := range data.AuditLog {
			actor := e.ActorName
			if actor == "" {
				actor = e.ActorID
			}
			d.Audit = append(d.Audit, detailAuditRow{
				Action:      string(e.Action),
				Actor:       actor,
				Amount:      e.Amount.FormatWithSeparators(opts.Locale),
				Reference:   e.PaymentReference,
				PerformedAt: e.PerformedAt.Format(df + " 15:04"),
			})
		}
	}

	if err := detailTmpl.Execute(w, d); err != nil {
		return fmt.Errorf("render settlement report: %w", err)
	}
	return nil
}
