package database

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHistoricalVotesByParty(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	years := []int{2014, 2018, 2022}
	mockPool.ExpectQuery("SELECT year, party, .* FROM historical_votes").
		WithArgs(years).
		WillReturnRows(pgxmock.NewRows([]string{"year", "party", "region", "position", "total_votes", "candidate_count"}).
			AddRow(2014, "Alpha", "north", "governor", int64(4000), 1).
			AddRow(2014, "Beta", "north", "governor", int64(6000), 1).
			AddRow(2018, "Alpha", "north", "governor", int64(4800), 1))

	repo := NewHistoricalRepository(mockPool)
	records, err := repo.GetHistoricalVotesByParty(context.Background(), years, "", "")

	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 2014, records[0].Year)
	assert.Equal(t, "Alpha", records[0].Party)
	assert.Equal(t, "north", records[0].Region)
	assert.Equal(t, int64(4000), records[0].TotalVotes)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetHistoricalVotesByPartyWithFilters(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	years := []int{2022}
	mockPool.ExpectQuery(`AND position = \$2 AND state = \$3`).
		WithArgs(years, "governor", "CA").
		WillReturnRows(pgxmock.NewRows([]string{"year", "party", "region", "position", "total_votes", "candidate_count"}).
			AddRow(2022, "Alpha", "north", "governor", int64(5100), 1))

	repo := NewHistoricalRepository(mockPool)
	records, err := repo.GetHistoricalVotesByParty(context.Background(), years, "governor", "CA")

	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "governor", records[0].Position)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestGetHistoricalVotesByPartyEmptyResult(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	years := []int{2014}
	mockPool.ExpectQuery("FROM historical_votes").
		WithArgs(years).
		WillReturnRows(pgxmock.NewRows([]string{"year", "party", "region", "position", "total_votes", "candidate_count"}))

	repo := NewHistoricalRepository(mockPool)
	records, err := repo.GetHistoricalVotesByParty(context.Background(), years, "", "")

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGetHistoricalVotesByPartyQueryError(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	years := []int{2014}
	mockPool.ExpectQuery("FROM historical_votes").
		WithArgs(years).
		WillReturnError(errors.New("connection refused"))

	repo := NewHistoricalRepository(mockPool)
	_, err = repo.GetHistoricalVotesByParty(context.Background(), years, "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query historical votes")
}
