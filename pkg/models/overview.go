package models

type TotalCount struct {
	TotalCount        int     `json:"total_count"`
	CurrentMonthCount int     `json:"current_month_count"`
	PercentageDiff    float64 `json:"percentage_diff"`
	IsPositive        bool    `json:"is_positive"`
}

// LabCounts maps a lab name to its material count.
type LabCounts map[string]int

type BarChart struct {
	Years  []int         `json:"years"`
	Series []ChartSeries `json:"series"`
}

type ChartSeries struct {
	Name string `json:"name"`
	Data []int  `json:"data"`
}
