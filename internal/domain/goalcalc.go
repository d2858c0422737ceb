package domain

import (
	"math"
	"strings"
)

// Activity levels accepted by the calculator.
const (
	ActivitySedentary        = "sedentary"
	ActivityLightlyActive    = "lightly_active"
	ActivityModeratelyActive = "moderately_active"
	ActivityVeryActive       = "very_active"
	ActivityExtraActive      = "extra_active"
)

// Weight-change goals.
const (
	GoalLose     = "lose"
	GoalMaintain = "maintain"
	GoalGain     = "gain"
)

// Sexes accepted by the BMR formula.
const (
	SexMale   = "male"
	SexFemale = "female"
)

const (
	loseDeficit = 500
	gainSurplus = 400

	proteinShare = 0.30
	carbsShare   = 0.40
	fatShare     = 0.30

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

var activityMultipliers = map[string]float64{
	ActivitySedentary:        1.2,
	ActivityLightlyActive:    1.375,
	ActivityModeratelyActive: 1.55,
	ActivityVeryActive:       1.725,
	ActivityExtraActive:      1.9,
}

// ActivityMultiplier returns the TDEE factor for level.
func ActivityMultiplier(level string) (float64, bool) {
	m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]
	return m, ok
}

// MacroSplit is the gram amount for each macro.
type MacroSplit struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

// GoalPlan is the calculator's full output.
type GoalPlan struct {
	BMR      float64    `json:"bmr"`
	TDEE     float64    `json:"tdee"`
	Calories int        `json:"calories"`
	Macros   MacroSplit `json:"macros"`
}

// CalculateBMR applies Mifflin-St Jeor. Any sex other than "male" takes the
// female offset.
func CalculateBMR(weightKg, heightCm float64, age int, sex string) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if strings.EqualFold(strings.TrimSpace(sex), SexMale) {
		return bmr + 5
	}
	return bmr - 161
}

// CalculateTDEE scales bmr by the activity multiplier. Unknown levels fall
// back to sedentary.
func CalculateTDEE(bmr float64, activityLevel string) float64 {
	m, ok := ActivityMultiplier(activityLevel)
	if !ok {
		m = activityMultipliers[ActivitySedentary]
	}
	return bmr * m
}

// CalculateCalorieGoal rounds tdee and applies the deficit or surplus of
// the weight goal. Unknown goals are treated as maintain.
func CalculateCalorieGoal(tdee float64, weightGoal string) int {
	base := int(math.Round(tdee))
	switch strings.ToLower(strings.TrimSpace(weightGoal)) {
	case GoalLose:
		return base - loseDeficit
	case GoalGain:
		return base + gainSurplus
	default:
		return base
	}
}

// CalculateMacros splits calories 30/40/30 into protein/carbs/fat grams.
// Each amount is rounded on its own, so the grams may not re-sum exactly.
func CalculateMacros(calories int) MacroSplit {
	c := float64(calories)
	return MacroSplit{
		Protein: int(math.Round(c * proteinShare / kcalPerGramProtein)),
		Carbs:   int(math.Round(c * carbsShare / kcalPerGramCarbs)),
		Fat:     int(math.Round(c * fatShare / kcalPerGramFat)),
	}
}

// CalculateGoals runs the whole pipeline. It reports false, without a
// partial result, when any biometric is missing or unrecognised.
func CalculateGoals(b Biometrics) (GoalPlan, bool) {
	if b.WeightKg == nil || *b.WeightKg <= 0 ||
		b.HeightCm == nil || *b.HeightCm <= 0 ||
		b.Age == nil || *b.Age <= 0 {
		return GoalPlan{}, false
	}
	if !validSex(b.Sex) || !validWeightGoal(b.WeightGoal) {
		return GoalPlan{}, false
	}
	if _, ok := ActivityMultiplier(b.ActivityLevel); !ok {
		return GoalPlan{}, false
	}

	bmr := CalculateBMR(*b.WeightKg, *b.HeightCm, *b.Age, b.Sex)
	tdee := CalculateTDEE(bmr, b.ActivityLevel)
	calories := CalculateCalorieGoal(tdee, b.WeightGoal)
	return GoalPlan{
		BMR:      bmr,
		TDEE:     tdee,
		Calories: calories,
		Macros:   CalculateMacros(calories),
	}, true
}

// Goals converts the plan into a goal record for userID.
func (p GoalPlan) Goals(userID int64, b Biometrics) UserGoals {
	return UserGoals{
		UserID:     userID,
		Calories:   p.Calories,
		Protein:    p.Macros.Protein,
		Carbs:      p.Macros.Carbs,
		Fat:        p.Macros.Fat,
		Biometrics: b,
	}
}

func validSex(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == SexMale || s == SexFemale
}

func validWeightGoal(g string) bool {
	switch strings.ToLower(strings.TrimSpace(g)) {
	case GoalLose, GoalMaintain, GoalGain:
		return true
	}
	return false
}
