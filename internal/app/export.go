package app

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"nutrilog/internal/domain"
)

var exportHeader = []string{"date", "calories", "protein", "carbs", "fat", "entry_count"}

// ExportCSV writes one row per calendar date of the range.
func (s *InsightsService) ExportCSV(ctx context.Context, user *domain.User, from, to string, w io.Writer) error {
	rs, err := s.Range(ctx, user, from, to)
	if err != nil {
		return err
	}
	return WriteDaysCSV(w, rs.Days)
}

// WriteDaysCSV writes aggregates as CSV with a header row.
func WriteDaysCSV(w io.Writer, days []domain.DailyAggregate) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, d := range days {
		row := []string{
			d.Date,
			strconv.FormatFloat(d.Calories, 'f', 0, 64),
			strconv.FormatFloat(d.Protein, 'f', 1, 64),
			strconv.FormatFloat(d.Carbs, 'f', 1, 64),
			strconv.FormatFloat(d.Fat, 'f', 1, 64),
			strconv.Itoa(d.EntryCount),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", d.Date, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
