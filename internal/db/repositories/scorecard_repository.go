package repositories

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"infinite-experiment/logbook/internal/models/dtos"
)

const scorecardQuery = `
SELECT
	COUNT(*) AS flights,
	COALESCE(SUM(total_time), 0) AS total_hours,
	COALESCE(SUM(pic_time), 0) AS pic_hours,
	COALESCE(SUM(sic_time), 0) AS sic_hours,
	COALESCE(SUM(dual_received), 0) AS dual_received_hours,
	COALESCE(SUM(night_time), 0) AS night_hours,
	COALESCE(SUM(cross_country_time), 0) AS cross_country_hours,
	COALESCE(SUM(actual_instrument), 0) AS actual_instrument_hours,
	COALESCE(SUM(simulated_instrument), 0) AS simulated_instrument_hours,
	COALESCE(SUM(turbine_time), 0) AS turbine_hours,
	COALESCE(SUM(multi_engine_time), 0) AS multi_engine_hours,
	COALESCE(SUM(helicopter_time), 0) AS helicopter_hours,
	COALESCE(SUM(military_time), 0) AS military_hours,
	COALESCE(SUM(day_landings), 0) AS day_landings,
	COALESCE(SUM(night_landings), 0) AS night_landings,
	COALESCE(SUM(approaches), 0) AS approaches,
	MIN(date_time) AS first_flight,
	MAX(date_time) AS last_flight
FROM flight_logs
WHERE user_id = ?`

// ScorecardRepository computes per-user totals with plain SQL
type ScorecardRepository struct {
	db *sqlx.DB
}

func NewScorecardRepository(db *sqlx.DB) *ScorecardRepository {
	return &ScorecardRepository{db: db}
}

// GetScorecard aggregates every flight of userID
func (r *ScorecardRepository) GetScorecard(ctx context.Context, userID string) (*dtos.Scorecard, error) {
	var card dtos.Scorecard
	if err := r.db.GetContext(ctx, &card, r.db.Rebind(scorecardQuery), userID); err != nil {
		return nil, fmt.Errorf("failed to compute scorecard: %w", err)
	}
	card.UserID = userID
	return &card, nil
}
