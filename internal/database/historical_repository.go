package database

import (
	"context"
	"fmt"

	"github.com/psephos-ai/psephos-go/internal/models"
)

// HistoricalRepository reads historical vote tallies. It implements
// interfaces.HistoricalDataSource.
type HistoricalRepository struct {
	pool DatabasePool
}

// NewHistoricalRepository creates a new historical votes repository.
//
// Parameters:
//
//	pool: The database connection pool.
//
// Returns:
//
//	*HistoricalRepository: The initialized repository.
func NewHistoricalRepository(pool DatabasePool) *HistoricalRepository {
	return &HistoricalRepository{pool: pool}
}

// GetHistoricalVotesByParty returns per-party vote tallies for the given
// years, optionally filtered by position and state. An empty result is
// returned as an empty slice, never an error.
//
// Parameters:
//
//	ctx: Context.
//	years: Election years to include.
//	position: Optional position filter ("" matches all).
//	state: Optional state filter ("" matches all).
//
// Returns:
//
//	[]models.HistoricalVoteRecord: Matching records ordered by year, party.
//	error: Error if the query fails.
func (r *HistoricalRepository) GetHistoricalVotesByParty(ctx context.Context, years []int, position, state string) ([]models.HistoricalVoteRecord, error) {
	query := `
		SELECT year, party, COALESCE(region, ''), COALESCE(position, ''), total_votes, candidate_count
		FROM historical_votes
		WHERE year = ANY($1)`
	args := []interface{}{years}

	argIdx := 2
	if position != "" {
		query += fmt.Sprintf(" AND position = $%d", argIdx)
		args = append(args, position)
		argIdx++
	}
	if state != "" {
		query += fmt.Sprintf(" AND state = $%d", argIdx)
		args = append(args, state)
	}
	query += " ORDER BY year, party"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query historical votes: %w", err)
	}
	defer rows.Close()

	records := make([]models.HistoricalVoteRecord, 0)
	for rows.Next() {
		var rec models.HistoricalVoteRecord
		if err := rows.Scan(&rec.Year, &rec.Party, &rec.Region, &rec.Position, &rec.TotalVotes, &rec.CandidateCount); err != nil {
			return nil, fmt.Errorf("failed to scan historical vote record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate historical votes: %w", err)
	}

	return records, nil
}
