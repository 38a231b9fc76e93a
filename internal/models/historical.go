package models

// HistoricalVoteRecord represents one party's vote tally in one election year,
// optionally scoped to a region and position
type HistoricalVoteRecord struct {
	Year           int    `json:"year" db:"year"`
	Party          string `json:"party" db:"party"`
	Region         string `json:"region,omitempty" db:"region"`
	Position       string `json:"position,omitempty" db:"position"`
	TotalVotes     int64  `json:"total_votes" db:"total_votes"`
	CandidateCount int    `json:"candidate_count" db:"candidate_count"`
}

// PartyYearShare is one point of a party's normalized vote-share series.
// Share is the party's percentage of that year's total across all parties.
type PartyYearShare struct {
	Year  int     `json:"year"`
	Votes int64   `json:"votes"`
	Share float64 `json:"share"`
}

// PartyTrendData carries the trend statistics derived from one party's
// historical share series
type PartyTrendData struct {
	Party           string           `json:"party"`
	HistoricalVotes []PartyYearShare `json:"historical_votes"`
	TrendSlope      float64          `json:"trend_slope"`
	Volatility      float64          `json:"volatility"`
	AvgGrowthRate   float64          `json:"avg_growth_rate"`
	SmoothedShare   float64          `json:"smoothed_share"`
}

// LastShare returns the most recent point of the share series, and false
// when the party has no historical data.
func (p *PartyTrendData) LastShare() (PartyYearShare, bool) {
	if len(p.HistoricalVotes) == 0 {
		return PartyYearShare{}, false
	}
	return p.HistoricalVotes[len(p.HistoricalVotes)-1], true
}
