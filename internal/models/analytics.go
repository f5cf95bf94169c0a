package models

// BookingStatsWindow holds booking counts and revenue rollups for one time
// window. Revenue figures cover accepted bookings only.
type BookingStatsWindow struct {
	Total        int     `json:"total"`
	Pending      int     `json:"pending"`
	Accepted     int     `json:"accepted"`
	Rejected     int     `json:"rejected"`
	Cancelled    int     `json:"cancelled"`
	GrossRevenue float64 `json:"gross_revenue"`
	Commission   float64 `json:"commission"`
	NetRevenue   float64 `json:"net_revenue"`
}

// BookingAnalytics is the operator-facing rollup returned by the analytics
// endpoint
type BookingAnalytics struct {
	CompanyID  string             `json:"company_id"`
	Today      BookingStatsWindow `json:"today"`
	Last7Days  BookingStatsWindow `json:"last_7_days"`
	Last30Days BookingStatsWindow `json:"last_30_days"`
	AllTime    BookingStatsWindow `json:"all_time"`
}
