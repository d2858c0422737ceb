package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"nutrilog/internal/app"
	"nutrilog/internal/domain"

	"github.com/spf13/cobra"
)

type calcFlags struct {
	weight     float64
	weightUnit string
	height     float64
	heightUnit string
	age        int
	sex        string
	activity   string
	goal       string
	asJSON     bool
}

func newCalcCmd() *cobra.Command {
	var f calcFlags
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate BMR, TDEE and daily calorie and macro targets",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := app.BiometricsInput{
				Weight:        &f.weight,
				WeightUnit:    f.weightUnit,
				Height:        &f.height,
				HeightUnit:    f.heightUnit,
				Age:           &f.age,
				Sex:           f.sex,
				ActivityLevel: f.activity,
				WeightGoal:    f.goal,
			}
			b, err := in.Biometrics()
			if err != nil {
				return err
			}
			plan, ok := domain.CalculateGoals(b)
			if !ok {
				return errors.New("weight, height and age must be positive; sex must be male or female; " +
					"activity must be one of sedentary, lightly_active, moderately_active, very_active, extra_active; " +
					"goal must be lose, maintain or gain")
			}

			out := cmd.OutOrStdout()
			if f.asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			}
			fmt.Fprintf(out, "BMR:      %.0f kcal\n", plan.BMR)
			fmt.Fprintf(out, "TDEE:     %.0f kcal\n", plan.TDEE)
			fmt.Fprintf(out, "Calories: %d kcal\n", plan.Calories)
			fmt.Fprintf(out, "Protein:  %d g\n", plan.Macros.Protein)
			fmt.Fprintf(out, "Carbs:    %d g\n", plan.Macros.Carbs)
			fmt.Fprintf(out, "Fat:      %d g\n", plan.Macros.Fat)
			return nil
		},
	}
	cmd.Flags().Float64Var(&f.weight, "weight", 0, "Body weight")
	cmd.Flags().StringVar(&f.weightUnit, "weight-unit", "kg", "Weight unit: kg or lb")
	cmd.Flags().Float64Var(&f.height, "height", 0, "Height")
	cmd.Flags().StringVar(&f.heightUnit, "height-unit", "cm", "Height unit: cm or in")
	cmd.Flags().IntVar(&f.age, "age", 0, "Age in years")
	cmd.Flags().StringVar(&f.sex, "sex", "", "male or female")
	cmd.Flags().StringVar(&f.activity, "activity", domain.ActivitySedentary, "Activity level")
	cmd.Flags().StringVar(&f.goal, "goal", domain.GoalMaintain, "Weight goal: lose, maintain or gain")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "Print the plan as JSON")
	return cmd
}
