package models

type MembershipStats struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByType       map[string]int `json:"by_type"`
	MonthRevenue float64        `json:"month_revenue"`
}

type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type AttendanceStats struct {
	Today         int         `json:"today"`
	Week          int         `json:"week"`
	Month         int         `json:"month"`
	AveragePerDay float64     `json:"average_per_day"`
	BusiestHours  []HourCount `json:"busiest_hours"`
}

type PostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Views int    `json:"views"`
}

type BlogStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	TotalViews int            `json:"total_views"`
	TopPosts   []PostSummary  `json:"top_posts"`
}

type UserStats struct {
	Total         int     `json:"total"`
	NewThisMonth  int     `json:"new_this_month"`
	NewLastMonth  int     `json:"new_last_month"`
	PercentChange float64 `json:"percent_change"`
}

type DashboardStats struct {
	Memberships MembershipStats `json:"memberships"`
	Attendance  AttendanceStats `json:"attendance"`
	Blog        BlogStats       `json:"blog"`
	Users       UserStats       `json:"users"`
}

// SeriesPoint is one bucket of a time series; Label is "2006-01" or "2006-01-02".
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
