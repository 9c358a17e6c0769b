package export

import (
	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

// Label tables for everything the exports render. Lookups fall back to the
// raw value so an unknown status never blanks a cell.

var statusLabels = map[money.Locale]map[domain.SettlementStatus]string{
	money.LocaleArabic: {
		domain.SettlementPending:       "قيد الانتظار",
		domain.SettlementPartiallyPaid: "مدفوع جزئياً",
		domain.SettlementPaid:          "مدفوع",
		domain.SettlementOverdue:       "متأخر",
		domain.SettlementDisputed:      "متنازع عليه",
		domain.SettlementWaived:        "معفى",
	},
	money.LocaleEnglish: {
		domain.SettlementPending:       "Pending",
		domain.SettlementPartiallyPaid: "Partially Paid",
		domain.SettlementPaid:          "Paid",
		domain.SettlementOverdue:       "Overdue",
		domain.SettlementDisputed:      "Disputed",
		domain.SettlementWaived:        "Waived",
	},
}

var directionLabels = map[money.Locale]map[money.Direction]string{
	money.LocaleArabic: {
		money.DirectionPlatformPaysProvider: "المنصة تدفع للمزود",
		money.DirectionProviderPaysPlatform: "المزود يدفع للمنصة",
		money.DirectionBalanced:             "متوازن",
	},
	money.LocaleEnglish: {
		money.DirectionPlatformPaysProvider: "Platform Pays Provider",
		money.DirectionProviderPaysPlatform: "Provider Pays Platform",
		money.DirectionBalanced:             "Balanced",
	},
}

var csvHeaders = map[money.Locale][]string{
	money.LocaleArabic: {
		"المعرف", "المزود", "بداية الفترة", "نهاية الفترة",
		"إجمالي الطلبات", "إجمالي الإيرادات", "عمولة المنصة",
		"صافي المستحق", "المبلغ المدفوع", "الحالة", "الاتجاه", "تاريخ الاستحقاق",
	},
	money.LocaleEnglish: {
		"ID", "Provider", "Period Start", "Period End",
		"Total Orders", "Gross Revenue", "Platform Commission",
		"Net Amount Due", "Amount Paid", "Status", "Direction", "Due Date",
	},
}

// StatusLabel returns the localized label for a settlement status.
func StatusLabel(status domain.SettlementStatus, locale money.Locale) string {
	if label, ok := statusLabels[locale][status]; ok {
		return label
	}
	return string(status)
}

// DirectionLabel returns the localized label for a settlement direction.
func DirectionLabel(d money.Direction, locale money.Locale) string {
	if label, ok := directionLabels[locale][d]; ok {
		return label
	}
	return string(d)
}
