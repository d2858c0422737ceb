package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"nutrilog/internal/domain"
)

var _ domain.FoodLogRepository = (*Store)(nil)

var entryColumns = []string{
	"id", "user_id", "meal", "food_id", "description",
	"serving_amount", "serving_unit", "calories", "protein", "carbs", "fat",
	"logged_at", "log_date", "barcode",
}

// AddEntry inserts a food-log entry and returns its id.
func (s *Store) AddEntry(ctx context.Context, e domain.FoodLogEntry) (int64, error) {
	row, err := s.queryRow(ctx, s.sb.Insert("food_log_entries").
		Columns(entryColumns[1:]...).
		Values(
			e.UserID, e.Meal, e.FoodID, e.Description,
			e.ServingAmount, e.ServingUnit, e.Calories, nullFloat(e.Protein), nullFloat(e.Carbs), nullFloat(e.Fat),
			e.LoggedAt.UTC(), e.Date, nullStringPtr(e.Barcode),
		).
		Suffix("RETURNING id"))
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, s.mapError(err, "entry for user", e.UserID)
	}
	return id, nil
}

// GetEntry returns one of the user's entries.
func (s *Store) GetEntry(ctx context.Context, userID, id int64) (*domain.FoodLogEntry, error) {
	row, err := s.queryRow(ctx, s.sb.Select(entryColumns...).
		From("food_log_entries").
		Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return nil, err
	}
	e, err := scanEntry(row)
	if err != nil {
		return nil, s.mapError(err, "entry", id)
	}
	return e, nil
}

// UpdateEntry rewrites the serving and the scaled nutrition of an entry.
func (s *Store) UpdateEntry(ctx context.Context, e domain.FoodLogEntry) error {
	res, err := s.exec(ctx, s.sb.Update("food_log_entries").
		Set("serving_amount", e.ServingAmount).
		Set("serving_unit", e.ServingUnit).
		Set("calories", e.Calories).
		Set("protein", nullFloat(e.Protein)).
		Set("carbs", nullFloat(e.Carbs)).
		Set("fat", nullFloat(e.Fat)).
		Where(squirrel.Eq{"id": e.ID, "user_id": e.UserID}))
	if err != nil {
		return s.mapError(err, "entry", e.ID)
	}
	return requireAffected(res, "entry", e.ID)
}

// DeleteEntry removes one of the user's entries.
func (s *Store) DeleteEntry(ctx context.Context, userID, id int64) error {
	res, err := s.exec(ctx, s.sb.Delete("food_log_entries").
		Where(squirrel.Eq{"id": id, "user_id": userID}))
	if err != nil {
		return s.mapError(err, "entry", id)
	}
	return requireAffected(res, "entry", id)
}

// ListEntries returns the user's entries matching f, oldest first unless
// f.NewestFirst is set.
func (s *Store) ListEntries(ctx context.Context, userID int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error) {
	q := s.sb.Select(entryColumns...).
		From("food_log_entries").
		Where(squirrel.Eq{"user_id": userID})
	if f.From != "" {
		q = q.Where(squirrel.GtOrEq{"log_date": f.From})
	}
	if f.To != "" {
		q = q.Where(squirrel.LtOrEq{"log_date": f.To})
	}
	if f.Meal != "" {
		q = q.Where(squirrel.Eq{"meal": f.Meal})
	}
	if f.NewestFirst {
		q = q.OrderBy("logged_at DESC", "id DESC")
	} else {
		q = q.OrderBy("logged_at ASC", "id ASC")
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}

	rows, err := s.query(ctx, q)
	if err != nil {
		return nil, s.mapError(err, "entries for user", userID)
	}
	defer rows.Close()

	var entries []domain.FoodLogEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(err, "entries for user", userID)
	}
	return entries, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.FoodLogEntry, error) {
	var e domain.FoodLogEntry
	err := sc.Scan(
		&e.ID, &e.UserID, &e.Meal, &e.FoodID, &e.Description,
		&e.ServingAmount, &e.ServingUnit, &e.Calories, &e.Protein, &e.Carbs, &e.Fat,
		&e.LoggedAt, &e.Date, &e.Barcode,
	)
	if err != nil {
		return nil, err
	}
	e.LoggedAt = e.LoggedAt.UTC()
	return &e, nil
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func nullStringPtr(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
