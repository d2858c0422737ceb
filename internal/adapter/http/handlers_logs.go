package adapthttp

import (
	"net/http"
	"strings"

	"nutrilog/internal/app"
	"nutrilog/internal/domain"
)

// addLogRequest accepts either a food record (inline or by id) with a
// serving, or a manual entry with explicit nutrients.
type addLogRequest struct {
	Meal          string                  `json:"meal"`
	Date          string                  `json:"date"`
	Food          *domain.NutritionalData `json:"food"`
	FoodID        string                  `json:"foodId"`
	ServingAmount float64                 `json:"servingAmount"`
	ServingUnit   string                  `json:"servingUnit"`
	Description   string                  `json:"description"`
	Calories      *float64                `json:"calories"`
	Protein       *float64                `json:"protein"`
	Carbs         *float64                `json:"carbs"`
	Fat           *float64                `json:"fat"`
}

func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		day, err := s.logs.ListByDate(ctx, user, r.URL.Query().Get("date"))
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "date": day.Date, "entries": day.Entries, "totals": day.Totals})

	case http.MethodPost:
		var body addLogRequest
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}

		food := body.Food
		if food == nil && strings.TrimSpace(body.FoodID) != "" {
			var err error
			if food, err = s.foods.Get(ctx, body.FoodID); err != nil {
				s.writeServiceError(w, r, err)
				return
			}
		}

		var (
			entry *domain.FoodLogEntry
			err   error
		)
		switch {
		case food != nil:
			entry, err = s.logs.AddFood(ctx, user, app.AddFoodInput{
				Meal:          body.Meal,
				Date:          body.Date,
				Food:          *food,
				ServingAmount: body.ServingAmount,
				ServingUnit:   body.ServingUnit,
			})
		case body.Calories != nil:
			entry, err = s.logs.AddManual(ctx, user, app.ManualEntryInput{
				Meal:          body.Meal,
				Date:          body.Date,
				Description:   body.Description,
				ServingAmount: body.ServingAmount,
				ServingUnit:   body.ServingUnit,
				Calories:      *body.Calories,
				Protein:       body.Protein,
				Carbs:         body.Carbs,
				Fat:           body.Fat,
			})
		default:
			err = domain.NewValidationError("food", "food, foodId or calories is required")
		}
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"success": true, "entry": entry})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleLogEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	id, err := pathID(r)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	switch r.Method {
	case http.MethodPut:
		var body struct {
			ServingAmount float64 `json:"servingAmount"`
			ServingUnit   string  `json:"servingUnit"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		entry, err := s.logs.Update(ctx, user, id, body.ServingAmount, body.ServingUnit)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "entry": entry})

	case http.MethodDelete:
		if err := s.logs.Delete(ctx, user, id); err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleLogsRecent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	items, err := s.logs.Recent(r.Context(), userFromContext(r.Context()), intQuery(r, "limit", 0))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": items})
}

func (s *Server) handleLogsUndoLast(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	undone, id, err := s.logs.UndoLast(r.Context(), userFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "undone": undone, "id": id})
}
