package report

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/catalog"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// ReportQuery holds the raw query parameters shared by every report endpoint
type ReportQuery struct {
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Category  string `form:"category"`
	ProductID string `form:"product_id"`
	Days      int    `form:"days" binding:"omitempty,min=1,max=3650"`
}

// ParseReportFilter builds a report filter from query strings. Dates are
// YYYY-MM-DD (UTC) or RFC3339. A date-only end covers the whole day; an
// RFC3339 end is used as given, midnight included.
func ParseReportFilter(pharmacyID uuid.UUID, startDate, endDate, category, productID string) (report.Filter, error) {
	f := report.Filter{PharmacyID: pharmacyID, Category: catalog.NormalizeLabel(category)}

	from, _, err := parseReportDate("start_date", startDate)
	if err != nil {
		return f, err
	}
	to, dateOnly, err := parseReportDate("end_date", endDate)
	if err != nil {
		return f, err
	}
	f.From = from
	f.To = to
	if dateOnly {
		f.To = shared.EndOfDay(to)
	}

	if id := strings.TrimSpace(productID); id != "" {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return f, shared.NewValidationError("invalid product_id %q", productID)
		}
		f.ProductID = &parsed
	}

	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

// Filter parses the query into a report filter
func (q ReportQuery) Filter(pharmacyID uuid.UUID) (report.Filter, error) {
	return ParseReportFilter(pharmacyID, q.StartDate, q.EndDate, q.Category, q.ProductID)
}

// parseReportDate reports whether value was a bare date
func parseReportDate(field, value string) (*time.Time, bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, false, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return &t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, false, shared.NewValidationError("invalid %s %q: expected YYYY-MM-DD or RFC3339", field, value)
	}
	return &t, false, nil
}
