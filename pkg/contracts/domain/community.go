package domain

// CommunityRecord represents one registered pre-sale project (建案) from the
// LVR community export.
type CommunityRecord struct {
	ProjectCode      string `json:"project_code" csv:"編號" validate:"required"`
	Name             string `json:"name" csv:"社區名稱"`
	City             string `json:"city" csv:"縣市"`
	District         string `json:"district" csv:"行政區"`
	TotalUnits       int    `json:"total_units" csv:"戶數" validate:"min=0"`
	SalesStartSeason string `json:"sales_start_season" csv:"銷售起始年季"`
}

// ProjectScale buckets a project by unit count, mirroring the standard
// market segmentation for Taiwanese pre-sale developments.
type ProjectScale string

const (
	ScaleSmall      ProjectScale = "small"       // <= 50 units
	ScaleMediumLow  ProjectScale = "medium_low"  // 51-100
	ScaleMedium     ProjectScale = "medium"      // 101-200
	ScaleLarge      ProjectScale = "large"       // 201-500
	ScaleExtraLarge ProjectScale = "extra_large" // > 500
	ScaleUnknown    ProjectScale = "unknown"
)

// Scale classifies the project by total unit count.
func (c CommunityRecord) Scale() ProjectScale {
	switch {
	case c.TotalUnits <= 0:
		return ScaleUnknown
	case c.TotalUnits <= 50:
		return ScaleSmall
	case c.TotalUnits <= 100:
		return ScaleMediumLow
	case c.TotalUnits <= 200:
		return ScaleMedium
	case c.TotalUnits <= 500:
		return ScaleLarge
	default:
		return ScaleExtraLarge
	}
}

// CityDistrict returns the combined geographic key (縣市 + 行政區).
func (c CommunityRecord) CityDistrict() string {
	return c.City + c.District
}
