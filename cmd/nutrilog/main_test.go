package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nutrilog/internal/adapter/memory"
	"nutrilog/internal/agent"
	"nutrilog/internal/app"
	"nutrilog/internal/config"
	"nutrilog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCalc_Text(t *testing.T) {
	out, err := runCmd(t, "calc", "--weight", "80", "--height", "180", "--age", "30", "--sex", "male")
	require.NoError(t, err)
	assert.Contains(t, out, "BMR:      1780 kcal")
	assert.Contains(t, out, "Calories: 2136 kcal")
	assert.Contains(t, out, "Protein:  160 g")
}

func TestCalc_JSONImperialLose(t *testing.T) {
	out, err := runCmd(t, "calc", "--json",
		"--weight", "176.37", "--weight-unit", "lb",
		"--height", "70.87", "--height-unit", "in",
		"--age", "30", "--sex", "male", "--goal", "lose")
	require.NoError(t, err)

	var plan struct {
		Calories int `json:"calories"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.InDelta(t, 1636, plan.Calories, 2)
}

func TestCalc_InvalidInput(t *testing.T) {
	_, err := runCmd(t, "calc", "--weight", "80", "--height", "180", "--age", "30", "--sex", "other")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "sex must be male or female"))

	_, err = runCmd(t, "calc", "--weight", "80", "--weight-unit", "stone", "--height", "180", "--age", "30", "--sex", "male")
	require.Error(t, err)
}

func TestCreateUser_RequiresFlags(t *testing.T) {
	_, err := runCmd(t, "create-user", "--username", "alice")
	require.Error(t, err)
}

func TestOpenStorage_SQLite(t *testing.T) {
	ctx := context.Background()
	store, err := openStorage(ctx, config.DatabaseConfig{
		Driver: config.DriverSQLite,
		URL:    filepath.Join(t.TempDir(), "nutrilog.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.close() })

	u, err := store.users.Create(ctx, "alice", "hash")
	require.NoError(t, err)
	n, err := store.users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Positive(t, u.ID)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	_, err := openStorage(context.Background(), config.DatabaseConfig{Driver: "mongo"})
	require.Error(t, err)
}

func TestMigrate_SQLite(t *testing.T) {
	cfg := config.DatabaseConfig{Driver: config.DriverSQLite, URL: filepath.Join(t.TempDir(), "m.db")}

	results, err := migrate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = migrate(context.Background(), cfg)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = migrate(context.Background(), config.DatabaseConfig{Driver: config.DriverMemory})
	require.Error(t, err)
}

type fixedFoodDB struct{}

func (fixedFoodDB) SearchFoods(ctx context.Context, query string, limit int) ([]domain.NutritionalData, error) {
	return []domain.NutritionalData{{FoodID: "1", Description: "Apple", Calories: 52, ServingSize: 100, ServingUnit: "g"}}, nil
}

func (fixedFoodDB) GetFood(ctx context.Context, id string) (*domain.NutritionalData, error) {
	return nil, domain.ErrNotFound
}

func TestAgentTools_SearchSkipsQuietPeriod(t *testing.T) {
	db := memory.New()
	foods := fixedFoodDB{}
	tools := agentTools(foods, nil, app.NewFoodLogService(db, foods, nil, nil), app.NewGoalsService(db, nil), nil)

	// A guarded search would sit out the quiet period and miss this deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	uiSearch := app.NewFoodSearchService(foods, nil, app.NewSearchGuard(time.Hour), nil)
	_, err := uiSearch.Search(ctx, &domain.User{ID: 1}, "apple", 5)
	require.Error(t, err)

	ctx2, cancel2 := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel2()
	out, err := tools.Call(ctx2, &domain.User{ID: 1}, agent.ToolSearchFood, json.RawMessage(`{"query":"apple"}`))
	require.NoError(t, err)
	assert.Contains(t, out, "Apple")
}
