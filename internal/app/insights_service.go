package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nutrilog/internal/domain"

	"golang.org/x/sync/errgroup"
)

const (
	defaultDailyDays   = 7
	maxRangeDays       = 366
	defaultWeeklyWeeks = 4
	maxWeeklyWeeks     = 52
)

// InsightsService builds gap-filled nutrition summaries over date ranges.
type InsightsService struct {
	logs  domain.FoodLogRepository
	goals domain.GoalsRepository
	log   *slog.Logger
	now   func() time.Time
}

// NewInsightsService creates an InsightsService backed by the given repositories.
func NewInsightsService(logs domain.FoodLogRepository, goals domain.GoalsRepository, logger *slog.Logger) *InsightsService {
	return &InsightsService{logs: logs, goals: goals, log: orDiscard(logger), now: time.Now}
}

// WithClock replaces the service clock. Used by tests.
func (s *InsightsService) WithClock(now func() time.Time) *InsightsService {
	s.now = now
	return s
}

// RangeSummary is one aggregate per calendar date of the range plus the
// statistics over the days that have data.
type RangeSummary struct {
	From    string                  `json:"from"`
	To      string                  `json:"to"`
	Days    []domain.DailyAggregate `json:"days"`
	Goals   *domain.UserGoals       `json:"goals"`
	Summary domain.RangeStats       `json:"summary"`
}

// WeekSummary covers one Sunday-anchored week.
type WeekSummary struct {
	Start   string            `json:"start"`
	End     string            `json:"end"`
	Summary domain.RangeStats `json:"summary"`
}

// WeeklySummary is a RangeSummary split into weeks, oldest first.
type WeeklySummary struct {
	RangeSummary
	Weeks []WeekSummary `json:"weeks"`
}

// Daily summarises the last days days, today included. Non-positive days
// means 7; the range is capped at 366 days.
func (s *InsightsService) Daily(ctx context.Context, user *domain.User, days int) (*RangeSummary, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultDailyDays
	}
	if days > maxRangeDays {
		days = maxRangeDays
	}
	today := s.today()
	return s.summarize(ctx, user, today.AddDate(0, 0, -(days-1)), today)
}

// Weekly summarises weeks Sunday-anchored weeks ending with the current,
// partial one.
func (s *InsightsService) Weekly(ctx context.Context, user *domain.User, weeks int) (*WeeklySummary, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if weeks <= 0 {
		weeks = defaultWeeklyWeeks
	}
	if weeks > maxWeeklyWeeks {
		weeks = maxWeeklyWeeks
	}

	today := s.today()
	thisSunday := today.AddDate(0, 0, -int(today.Weekday()))
	start := thisSunday.AddDate(0, 0, -7*(weeks-1))

	rs, err := s.summarize(ctx, user, start, today)
	if err != nil {
		return nil, err
	}

	out := &WeeklySummary{RangeSummary: *rs, Weeks: make([]WeekSummary, 0, weeks)}
	for i := 0; i < len(rs.Days); i += 7 {
		end := min(i+7, len(rs.Days))
		week := rs.Days[i:end]
		out.Weeks = append(out.Weeks, WeekSummary{
			Start:   week[0].Date,
			End:     week[len(week)-1].Date,
			Summary: domain.Summarize(week, rs.Goals),
		})
	}
	return out, nil
}

// Monthly summarises every day of the given month. A zero year or month
// means the current one.
func (s *InsightsService) Monthly(ctx context.Context, user *domain.User, year, month int) (*RangeSummary, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	today := s.today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = int(today.Month())
	}
	if month < 1 || month > 12 {
		return nil, domain.NewValidationError("month", "must be between 1 and 12")
	}
	if year < 1 || year > 9999 {
		return nil, domain.NewValidationError("year", "must be between 1 and 9999")
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)
	return s.summarize(ctx, user, first, last)
}

// Range summarises an arbitrary inclusive range of YYYY-MM-DD dates.
func (s *InsightsService) Range(ctx context.Context, user *domain.User, from, to string) (*RangeSummary, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	start, end, err := parseRange(from, to)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, user, start, end)
}

func (s *InsightsService) summarize(ctx context.Context, user *domain.User, start, end time.Time) (*RangeSummary, error) {
	dates := domain.DatesBetween(start, end)
	from, to := dates[0], dates[len(dates)-1]

	entries, goals, err := s.fetch(ctx, user.ID, from, to)
	if err != nil {
		return nil, err
	}
	days := domain.FillRange(domain.AggregateByDay(entries), dates)

	return &RangeSummary{
		From:    from,
		To:      to,
		Days:    days,
		Goals:   goals,
		Summary: domain.Summarize(days, goals),
	}, nil
}

// fetch loads entries and goals concurrently. A store failure degrades
// that read (entries to none, goals to nil); only cancellation of ctx is
// returned as an error.
func (s *InsightsService) fetch(ctx context.Context, userID int64, from, to string) ([]domain.FoodLogEntry, *domain.UserGoals, error) {
	var (
		entries []domain.FoodLogEntry
		goals   *domain.UserGoals
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		list, err := s.logs.ListEntries(gctx, userID, domain.EntryFilter{From: from, To: to})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.log.WarnContext(ctx, "insights: list entries failed", "user_id", userID, "from", from, "to", to, "error", err)
			return nil
		}
		entries = list
		return nil
	})
	g.Go(func() error {
		gl, err := s.goals.GetGoals(gctx, userID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.log.WarnContext(ctx, "insights: get goals failed", "user_id", userID, "error", err)
			return nil
		}
		goals = gl
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("insights fetch: %w", err)
	}
	return entries, goals, nil
}

func (s *InsightsService) today() time.Time {
	n := s.now().In(time.Local)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.Local)
}

func parseRange(from, to string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(domain.DateLayout, from, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("from", "must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(domain.DateLayout, to, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, domain.NewValidationError("to", "must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, domain.NewValidationError("to", "must not be before from")
	}
	if n := len(domain.DatesBetween(start, end)); n > maxRangeDays {
		return time.Time{}, time.Time{}, domain.NewValidationError("to", fmt.Sprintf("range spans %d days, max %d", n, maxRangeDays))
	}
	return start, end, nil
}
