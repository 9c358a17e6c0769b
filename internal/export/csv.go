package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/engezna/settlement-engine/internal/domain"
	"github.com/engezna/settlement-engine/internal/money"
)

// utf8BOM makes spreadsheet applications pick UTF-8 instead of guessing,
// which matters for the Arabic export.
const utf8BOM = "\xEF\xBB\xBF"

// WriteSettlementsCSV writes the settlements as CSV with a UTF-8 BOM. Every
// field is quoted and amounts use plain two-decimal western digits so the
// file stays machine-parseable regardless of locale.
func WriteSettlementsCSV(w io.Writer, settlements []domain.Settlement, locale money.Locale) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write BOM: %w", err)
	}

	if err := writeCSVRow(w, csvHeaders[locale]); err != nil {
		return err
	}

	for _, s := range settlements {
		row := []string{
			s.ID,
			s.ProviderName.Get(locale),
			s.PeriodStart.Format("2006-01-02"),
			s.PeriodEnd.Format("2006-01-02"),
			strconv.Itoa(s.TotalOrders),
			s.GrossRevenue.ToFixed(2),
			s.PlatformCommission.ToFixed(2),
			s.NetAmountDue.ToFixed(2),
			s.AmountPaid.ToFixed(2),
			StatusLabel(s.Status, locale),
			DirectionLabel(s.Direction, locale),
			s.DueDate.Format("2006-01-02"),
		}
		if err := writeCSVRow(w, row); err != nil {
			return err
		}
	}

	return nil
}

// CSVFilename names an export after the day it was generated.
func CSVFilename(t time.Time) string {
	return "settlements-" + t.Format("2006-01-02") + ".csv"
}

func writeCSVRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	if _, err := io.WriteString(w, strings.Join(quoted, ",")+"\n"); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	return nil
}
