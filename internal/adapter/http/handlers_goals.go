package adapthttp

import (
	"net/http"

	"nutrilog/internal/app"
)

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		goals, err := s.goals.Get(ctx, user)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "goals": goals})

	case http.MethodPut:
		var body app.SaveGoalsInput
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		goals, err := s.goals.Save(ctx, user, body)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "goals": goals})

	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleGoalsCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var body app.BiometricsInput
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	plan, err := s.goals.Calculate(body)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"bmr":      plan.BMR,
		"tdee":     plan.TDEE,
		"calories": plan.Calories,
		"protein":  plan.Macros.Protein,
		"carbs":    plan.Macros.Carbs,
		"fat":      plan.Macros.Fat,
	})
}
