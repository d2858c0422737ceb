package domain

import (
	"math"
	"sort"
	"time"
)

// AdherenceTolerance is the fraction either side of the calorie goal that
// still counts as on target.
const AdherenceTolerance = 0.10

// DailyAggregate is the derived per-date total of a user's food log.
type DailyAggregate struct {
	Date       string  `json:"date"`
	Calories   float64 `json:"calories"`
	Protein    float64 `json:"protein"`
	Carbs      float64 `json:"carbs"`
	Fat        float64 `json:"fat"`
	EntryCount int     `json:"entryCount"`
}

// AggregateByDay folds entries into per-date totals keyed by the stored Date
// field. Output is sorted ascending by date and omits dates without entries.
func AggregateByDay(entries []FoodLogEntry) []DailyAggregate {
	byDate := make(map[string]*DailyAggregate)
	for _, e := range entries {
		agg, ok := byDate[e.Date]
		if !ok {
			agg = &DailyAggregate{Date: e.Date}
			byDate[e.Date] = agg
		}
		agg.Calories += e.Calories
		agg.Protein += Value(e.Protein)
		agg.Carbs += Value(e.Carbs)
		agg.Fat += Value(e.Fat)
		agg.EntryCount++
	}

	out := make([]DailyAggregate, 0, len(byDate))
	for _, agg := range byDate {
		out = append(out, *agg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// DatesBetween lists every calendar date from start to end inclusive.
// It returns nil when end is before start.
func DatesBetween(start, end time.Time) []string {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if end.Before(start) {
		return nil
	}
	var out []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(DateLayout))
	}
	return out
}

// FillRange returns one aggregate per date in dates, using the computed
// aggregate where present and a zero aggregate otherwise.
func FillRange(aggs []DailyAggregate, dates []string) []DailyAggregate {
	byDate := make(map[string]DailyAggregate, len(aggs))
	for _, a := range aggs {
		byDate[a.Date] = a
	}
	out := make([]DailyAggregate, 0, len(dates))
	for _, d := range dates {
		if a, ok := byDate[d]; ok {
			out = append(out, a)
			continue
		}
		out = append(out, DailyAggregate{Date: d})
	}
	return out
}

// RangeStats summarises the days of a range that have at least one entry.
type RangeStats struct {
	TotalDaysLogged int             `json:"totalDaysLogged"`
	TotalCalories   float64         `json:"totalCalories"`
	TotalProtein    float64         `json:"totalProtein"`
	TotalCarbs      float64         `json:"totalCarbs"`
	TotalFat        float64         `json:"totalFat"`
	AvgCalories     float64         `json:"avgCalories"`
	AvgProtein      float64         `json:"avgProtein"`
	AvgCarbs        float64         `json:"avgCarbs"`
	AvgFat          float64         `json:"avgFat"`
	GoalAdherence   int             `json:"goalAdherence"`
	HighestDay      *DailyAggregate `json:"highestDay,omitempty"`
	LowestDay       *DailyAggregate `json:"lowestDay,omitempty"`
}

// Summarize computes statistics over days with EntryCount > 0. Averages are
// divided by the number of such days, never by the range length. Adherence
// is 0 when goals is nil or no day has data.
func Summarize(days []DailyAggregate, goals *UserGoals) RangeStats {
	var s RangeStats
	for i := range days {
		d := days[i]
		if d.EntryCount == 0 {
			continue
		}
		s.TotalDaysLogged++
		s.TotalCalories += d.Calories
		s.TotalProtein += d.Protein
		s.TotalCarbs += d.Carbs
		s.TotalFat += d.Fat
		if s.HighestDay == nil || d.Calories > s.HighestDay.Calories {
			s.HighestDay = &days[i]
		}
		if s.LowestDay == nil || d.Calories < s.LowestDay.Calories {
			s.LowestDay = &days[i]
		}
	}
	if s.TotalDaysLogged == 0 {
		return s
	}

	n := float64(s.TotalDaysLogged)
	s.AvgCalories = s.TotalCalories / n
	s.AvgProtein = s.TotalProtein / n
	s.AvgCarbs = s.TotalCarbs / n
	s.AvgFat = s.TotalFat / n
	s.GoalAdherence = GoalAdherence(days, goals)
	return s
}

// GoalAdherence is the rounded percentage of days with data whose calories
// fall within AdherenceTolerance of the calorie goal. A goal record without
// a positive calorie target is scored against DefaultCalorieGoal.
func GoalAdherence(days []DailyAggregate, goals *UserGoals) int {
	if goals == nil {
		return 0
	}
	target := float64(goals.Calories)
	if target <= 0 {
		target = DefaultCalorieGoal
	}
	lower := target * (1 - AdherenceTolerance)
	upper := target * (1 + AdherenceTolerance)

	var withData, within int
	for _, d := range days {
		if d.EntryCount == 0 {
			continue
		}
		withData++
		if d.Calories >= lower && d.Calories <= upper {
			within++
		}
	}
	if withData == 0 {
		return 0
	}
	return int(math.Round(float64(within) / float64(withData) * 100))
}
