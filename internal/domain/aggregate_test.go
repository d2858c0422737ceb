package domain_test

import (
	"testing"
	"time"

	"nutrilog/internal/domain"
)

func TestAggregateByDay(t *testing.T) {
	entries := []domain.FoodLogEntry{
		{Date: "2024-01-02", Calories: 100, Protein: domain.Float(5)},
		{Date: "2024-01-01", Calories: 500, Protein: domain.Float(20), Carbs: domain.Float(60)},
		{Date: "2024-01-01", Calories: 300, Fat: domain.Float(10)},
	}

	got := domain.AggregateByDay(entries)
	if len(got) != 2 {
		t.Fatalf("expected 2 aggregates, got %d", len(got))
	}
	day1 := got[0]
	if day1.Date != "2024-01-01" || day1.Calories != 800 || day1.EntryCount != 2 {
		t.Errorf("unexpected day1: %+v", day1)
	}
	if day1.Protein != 20 || day1.Carbs != 60 || day1.Fat != 10 {
		t.Errorf("nil macros should count as zero: %+v", day1)
	}
	if got[1].Date != "2024-01-02" || got[1].EntryCount != 1 {
		t.Errorf("unexpected day2: %+v", got[1])
	}
}

func TestAggregateByDay_Empty(t *testing.T) {
	if got := domain.AggregateByDay(nil); len(got) != 0 {
		t.Errorf("expected no aggregates, got %v", got)
	}
}

func TestDatesBetween(t *testing.T) {
	start := time.Date(2024, 2, 27, 15, 0, 0, 0, time.Local)
	end := time.Date(2024, 3, 1, 1, 0, 0, 0, time.Local)

	got := domain.DatesBetween(start, end)
	want := []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}
	if len(got) != len(want) {
		t.Fatalf("got %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q; want %q", i, got[i], want[i])
		}
	}
	if domain.DatesBetween(end, start) != nil {
		t.Error("expected nil for inverted range")
	}
}

func TestFillRangeAndSummarize(t *testing.T) {
	entries := []domain.FoodLogEntry{
		{Date: "2024-01-01", Calories: 500},
		{Date: "2024-01-01", Calories: 300},
	}
	days := domain.FillRange(domain.AggregateByDay(entries),
		[]string{"2024-01-01", "2024-01-02", "2024-01-03"})

	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	if days[0].Calories != 800 || days[0].EntryCount != 2 {
		t.Errorf("unexpected day1: %+v", days[0])
	}
	for _, d := range days[1:] {
		if d.Calories != 0 || d.EntryCount != 0 {
			t.Errorf("expected empty day, got %+v", d)
		}
	}

	goals := domain.DefaultGoals(1)
	s := domain.Summarize(days, &goals)
	if s.AvgCalories != 800 {
		t.Errorf("avgCalories = %v; want 800", s.AvgCalories)
	}
	if s.TotalDaysLogged != 1 {
		t.Errorf("totalDaysLogged = %d; want 1", s.TotalDaysLogged)
	}
	if s.HighestDay == nil || s.HighestDay.Date != "2024-01-01" {
		t.Errorf("unexpected highest day: %+v", s.HighestDay)
	}
	if s.GoalAdherence != 0 {
		t.Errorf("adherence = %d; want 0", s.GoalAdherence)
	}
}

func TestSummarize_NoData(t *testing.T) {
	goals := domain.DefaultGoals(1)
	s := domain.Summarize([]domain.DailyAggregate{{Date: "2024-01-01"}}, &goals)
	if s.TotalDaysLogged != 0 || s.AvgCalories != 0 || s.GoalAdherence != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
	if s.HighestDay != nil || s.LowestDay != nil {
		t.Error("expected no highest/lowest day")
	}
}

func TestGoalAdherence(t *testing.T) {
	days := []domain.DailyAggregate{
		{Date: "2024-01-01", Calories: 1900, EntryCount: 1},
		{Date: "2024-01-02", Calories: 2300, EntryCount: 2},
		{Date: "2024-01-03", Calories: 1850, EntryCount: 1},
		{Date: "2024-01-04"},
	}

	tests := []struct {
		name  string
		goals *domain.UserGoals
		want  int
	}{
		{"nil goals", nil, 0},
		{"2000 kcal goal", &domain.UserGoals{Calories: 2000}, 67},
		{"non-positive goal uses default", &domain.UserGoals{Calories: 0}, 67},
		{"2300 kcal goal", &domain.UserGoals{Calories: 2300}, 33},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := domain.GoalAdherence(days, tc.goals); got != tc.want {
				t.Errorf("GoalAdherence = %d; want %d", got, tc.want)
			}
		})
	}
}
