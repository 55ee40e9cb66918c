package domain

import (
	"time"
)

// TransactionRecord represents a single pre-sale unit transaction from the
// LVR (實價登錄) per-transaction export. One row per registered deal; the
// same physical unit may appear multiple times when a buyer cancels and the
// unit is re-sold.
type TransactionRecord struct {
	ProjectCode      string    `json:"project_code" csv:"備查編號" validate:"required"`
	City             string    `json:"city" csv:"縣市"`
	District         string    `json:"district" csv:"行政區"`
	Street           string    `json:"street" csv:"坐落街道"`
	Floor            string    `json:"floor" csv:"樓層"`
	Date             time.Time `json:"date" csv:"交易日期"`
	YearSeason       string    `json:"year_season" csv:"交易年季"`
	TotalPrice       float64   `json:"total_price" csv:"交易總價" validate:"min=0"`
	UnitPrice        float64   `json:"unit_price" csv:"建物單價" validate:"min=0"`
	BuildingUse      string    `json:"building_use,omitempty" csv:"主要用途"`
	CancellationText string    `json:"cancellation_text,omitempty" csv:"解約情形"`
}

// HasCancellationText reports whether the cancellation cell carries any
// content. Absence means a normal, non-cancelled transaction.
func (t TransactionRecord) HasCancellationText() bool {
	return t.CancellationText != ""
}

// CityDistrict returns the combined geographic key used for district-level
// aggregation (縣市 + 行政區).
func (t TransactionRecord) CityDistrict() string {
	return t.City + t.District
}
