package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/period"
)

// noUsageRemainingDays is reported when nothing has been spent this cycle.
const noUsageRemainingDays = 999

// UserPoints fetches the balance from Poe and derives usage figures from
// the locally stored history.
func (e *Engine) UserPoints(ctx context.Context, creds models.Credentials) (*models.UserPointsInfo, error) {
	info, err := e.fetcher.Settings(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch points info: %w", err)
	}

	now := e.now()
	cycleStart := period.CycleStart(time.UnixMicro(info.NextGrantTime))
	used, err := e.store.SumSince(ctx, cycleStart.UnixMicro())
	if err != nil {
		return nil, err
	}

	out := ComputeUserPoints(*info, used, cycleStart, now)
	return &out, nil
}

// ComputeUserPoints derives used points, usage percentage, the average
// daily spend since cycleStart and the days the balance will last.
func ComputeUserPoints(info models.PointsInfo, usedInCycle int64, cycleStart, now time.Time) models.UserPointsInfo {
	out := models.UserPointsInfo{
		PointsInfo: info,
		UsedPoints: info.TotalAllotment - info.CurrentBalance,
	}
	if info.TotalAllotment > 0 {
		out.UsagePercentage = float64(out.UsedPoints) / float64(info.TotalAllotment) * 100
	}

	days := now.Sub(cycleStart).Hours() / 24
	if days < 1 {
		days = 1
	}
	out.AvgPerDay = int64(float64(usedInCycle) / days)

	if out.AvgPerDay > 0 {
		out.RemainingDays = int64(float64(info.CurrentBalance) / float64(out.AvgPerDay))
	} else {
		out.RemainingDays = noUsageRemainingDays
	}
	return out
}
