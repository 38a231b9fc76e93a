package services

import (
	"sort"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// GroupVotesByParty groups historical records by party, each party's records
// ordered ascending by year. Pure transformation; empty input yields an
// empty map.
func GroupVotesByParty(records []models.HistoricalVoteRecord) map[string][]models.HistoricalVoteRecord {
	grouped := make(map[string][]models.HistoricalVoteRecord)
	for _, rec := range records {
		grouped[rec.Party] = append(grouped[rec.Party], rec)
	}
	for party := range grouped {
		recs := grouped[party]
		sort.Slice(recs, func(i, j int) bool { return recs[i].Year < recs[j].Year })
	}
	return grouped
}

// TotalVotesByYear sums total votes per year across all parties in the
// input. The per-year totals are the denominators for share normalization.
func TotalVotesByYear(records []models.HistoricalVoteRecord) map[int]int64 {
	totals := make(map[int]int64)
	for _, rec := range records {
		totals[rec.Year] += rec.TotalVotes
	}
	return totals
}

// PartyShareSeries converts one party's year-ordered records into a
// vote-share series against the given per-year totals. A year with a zero
// total yields share 0.
func PartyShareSeries(partyRecords []models.HistoricalVoteRecord, yearTotals map[int]int64) []models.PartyYearShare {
	series := make([]models.PartyYearShare, 0, len(partyRecords))
	for _, rec := range partyRecords {
		share := 0.0
		if total := yearTotals[rec.Year]; total > 0 {
			share = float64(rec.TotalVotes) / float64(total) * 100
		}
		series = append(series, models.PartyYearShare{
			Year:  rec.Year,
			Votes: rec.TotalVotes,
			Share: share,
		})
	}
	return series
}
