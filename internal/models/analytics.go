package models

type Dashboard struct {
	TotalVisits         int            `json:"totalVisits"`
	TotalUniqueVisitors int            `json:"totalUniqueVisitors"`
	TotalJobViews       int            `json:"totalJobViews"`
	TotalJobClicks      int            `json:"totalJobClicks"`
	ConversionRate      float64        `json:"conversionRate"`
	DeviceBreakdown     map[string]int `json:"deviceBreakdown,omitempty"`
	BrowserBreakdown    map[string]int `json:"browserBreakdown,omitempty"`
}

type JobStat struct {
	JobID          string  `json:"jobId"`
	Role           string  `json:"role"`
	CompanyName    string  `json:"companyName"`
	Views          int     `json:"views"`
	Clicks         int     `json:"clicks"`
	ConversionRate float64 `json:"conversionRate"`
}

type CompanyStat struct {
	Company        string  `json:"company"`
	Views          int     `json:"views"`
	Clicks         int     `json:"clicks"`
	ConversionRate float64 `json:"conversionRate"`
}

type TrendPoint struct {
	Date           string `json:"date"`
	Visits         int    `json:"visits"`
	UniqueVisitors int    `json:"uniqueVisitors"`
	JobViews       int    `json:"jobViews"`
	JobClicks      int    `json:"jobClicks"`
}

type TrendSummary struct {
	AvgDailyVisits         float64 `json:"avgDailyVisits"`
	AvgDailyUniqueVisitors float64 `json:"avgDailyUniqueVisitors"`
	AvgDailyJobViews       float64 `json:"avgDailyJobViews"`
	ConversionRate         float64 `json:"conversionRate"`
}

type Trends struct {
	Trends  []TrendPoint `json:"trends"`
	Summary TrendSummary `json:"summary"`
}

// AnalyticsRange is the query shared by every analytics endpoint.
type AnalyticsRange struct {
	Days  int `url:"days,omitempty"`
	Limit int `url:"limit,omitempty"`
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// Overview bundles the four analytics views for one day range.
type Overview struct {
	Days      int
	Dashboard Dashboard
	Jobs      []JobStat
	Companies []CompanyStat
	Trends    Trends
}
