package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"

	"nutrilog/internal/domain"
)

var _ domain.GoalsRepository = (*Store)(nil)

// GetGoals returns the user's saved goals, or domain.ErrNotFound.
func (s *Store) GetGoals(ctx context.Context, userID int64) (*domain.UserGoals, error) {
	row, err := s.queryRow(ctx, s.sb.
		Select("user_id", "calories", "protein", "carbs", "fat",
			"weight_kg", "height_cm", "age", "sex", "activity_level", "weight_goal", "updated_at").
		From("user_goals").
		Where(squirrel.Eq{"user_id": userID}))
	if err != nil {
		return nil, err
	}

	var (
		g                     domain.UserGoals
		age                   sql.NullInt64
		sex, activity, target sql.NullString
	)
	err = row.Scan(&g.UserID, &g.Calories, &g.Protein, &g.Carbs, &g.Fat,
		&g.Biometrics.WeightKg, &g.Biometrics.HeightCm, &age, &sex, &activity, &target, &g.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err, "goals for user", userID)
	}
	if age.Valid {
		v := int(age.Int64)
		g.Biometrics.Age = &v
	}
	g.Biometrics.Sex = sex.String
	g.Biometrics.ActivityLevel = activity.String
	g.Biometrics.WeightGoal = target.String
	g.UpdatedAt = g.UpdatedAt.UTC()
	return &g, nil
}

// SaveGoals upserts the user's goals.
func (s *Store) SaveGoals(ctx context.Context, g domain.UserGoals) error {
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now()
	}
	var age sql.NullInt64
	if g.Biometrics.Age != nil {
		age = sql.NullInt64{Int64: int64(*g.Biometrics.Age), Valid: true}
	}
	_, err := s.exec(ctx, s.sb.Insert("user_goals").
		Columns("user_id", "calories", "protein", "carbs", "fat",
			"weight_kg", "height_cm", "age", "sex", "activity_level", "weight_goal", "updated_at").
		Values(g.UserID, g.Calories, g.Protein, g.Carbs, g.Fat,
			nullFloat(g.Biometrics.WeightKg), nullFloat(g.Biometrics.HeightCm), age,
			nullString(g.Biometrics.Sex), nullString(g.Biometrics.ActivityLevel), nullString(g.Biometrics.WeightGoal),
			g.UpdatedAt.UTC()).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			calories = excluded.calories,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fat = excluded.fat,
			weight_kg = excluded.weight_kg,
			height_cm = excluded.height_cm,
			age = excluded.age,
			sex = excluded.sex,
			activity_level = excluded.activity_level,
			weight_goal = excluded.weight_goal,
			updated_at = excluded.updated_at`))
	return s.mapError(err, "goals for user", g.UserID)
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
