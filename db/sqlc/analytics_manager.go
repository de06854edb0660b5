package sqlc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager keeps server level counters. A manager
// without queries is valid and counts nothing, which is how
// the server runs when no database is configured.
type AnalyticsManager struct {
	queries Querier
}

type AnalyticsCounts struct {
	GamesStarted int64 `json:"games_started"`
	GamesWon     int64 `json:"games_won"`
	GamesLost    int64 `json:"games_lost"`
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) Enabled() bool {
	return a != nil && a.queries != nil
}

func (a *AnalyticsManager) IncrementGamesStartedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	if !a.Enabled() {
		return nil
	}
	return a.queries.IncrementGamesStartedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) IncrementGamesWonCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	if !a.Enabled() {
		return nil
	}
	return a.queries.IncrementGamesWonCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) IncrementGamesLostCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	if !a.Enabled() {
		return nil
	}
	return a.queries.IncrementGamesLostCount(ctx, serverIpNet)
}

// A server that never recorded anything reads as all zeros.
func (a *AnalyticsManager) GetCounts(ctx context.Context, serverIpNet pqtype.Inet) (AnalyticsCounts, error) {
	if !a.Enabled() {
		return AnalyticsCounts{}, nil
	}

	row, err := a.queries.GetAnalytics(ctx, serverIpNet)
	if errors.Is(err, sql.ErrNoRows) {
		return AnalyticsCounts{}, nil
	}
	if err != nil {
		return AnalyticsCounts{}, err
	}

	return AnalyticsCounts{
		GamesStarted: row.GamesStarted,
		GamesWon:     row.GamesWon,
		GamesLost:    row.GamesLost,
	}, nil
}
