package app_test

import (
	"bytes"
	"context"
	"testing"

	"nutrilog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportCSV(t *testing.T) {
	logs := &mockFoodLogRepo{
		listFn: func(context.Context, int64, domain.EntryFilter) ([]domain.FoodLogEntry, error) {
			return []domain.FoodLogEntry{
				{Date: "2024-01-01", Calories: 500, Protein: domain.Float(20.5)},
				{Date: "2024-01-01", Calories: 300, Fat: domain.Float(4)},
			}, nil
		},
	}

	var buf bytes.Buffer
	err := newInsights(logs, &mockGoalsRepo{}).ExportCSV(context.Background(), testUser, "2024-01-01", "2024-01-02", &buf)
	require.NoError(t, err)

	want := "date,calories,protein,carbs,fat,entry_count\n" +
		"2024-01-01,800,20.5,0.0,4.0,2\n" +
		"2024-01-02,0,0.0,0.0,0.0,0\n"
	assert.Equal(t, want, buf.String())
}

func TestExportCSV_InvalidRange(t *testing.T) {
	var buf bytes.Buffer
	err := newInsights(&mockFoodLogRepo{}, &mockGoalsRepo{}).ExportCSV(context.Background(), testUser, "2024-02-01", "2024-01-01", &buf)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, buf.Len())
}
