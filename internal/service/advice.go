package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/platewise/backend/internal/llm"
	"github.com/platewise/backend/internal/models"
	"github.com/platewise/backend/internal/types"
)

var macroSchema = llm.Schema{
	"type": "OBJECT",
	"properties": map[string]any{
		"protein": map[string]any{"type": "NUMBER"},
		"carbs":   map[string]any{"type": "NUMBER"},
		"fats":    map[string]any{"type": "NUMBER"},
	},
}

// CalorieTargetSchema constrains the calorie target answer.
var CalorieTargetSchema = llm.Schema{
	"type": "OBJECT",
	"properties": map[string]any{
		"dailyCalories":    map[string]any{"type": "NUMBER"},
		"explanation":      map[string]any{"type": "STRING"},
		"macros":           macroSchema,
		"weeklyAdjustment": map[string]any{"type": "STRING"},
	},
}

// HealthReportSchema constrains the health report answer.
var HealthReportSchema = llm.Schema{
	"type": "OBJECT",
	"properties": map[string]any{
		"dailyCaloriesTarget": map[string]any{"type": "NUMBER"},
		"macronutrientTarget": macroSchema,
		"overallAssessment":   map[string]any{"type": "STRING"},
		"observations":        map[string]any{"type": "STRING"},
		"recommendations":     map[string]any{"type": "STRING"},
		"weeklyAdvice":        map[string]any{"type": "STRING"},
		"lifestyleTips":       map[string]any{"type": "STRING"},
		"motivationalNote":    map[string]any{"type": "STRING"},
	},
}

// AdviceService asks the generator for calorie targets and health reports.
type AdviceService struct {
	generator llm.Generator
	logger    *slog.Logger
}

var _ IAdviceService = (*AdviceService)(nil)

func NewAdviceService(generator llm.Generator, logger *slog.Logger) *AdviceService {
	return &AdviceService{generator: generator, logger: logger.With("component", "advice")}
}

// CalorieTarget returns a daily calorie and macro target for the person
// described by req, falling back to the stored profile for missing fields.
func (s *AdviceService) CalorieTarget(ctx context.Context, user *models.User, req *types.CalorieTargetRequest) (map[string]any, error) {
	p := mergeProfile(user, req)

	var b strings.Builder
	b.WriteString("Calculate a daily calorie target for a person with the following profile:\n")
	p.write(&b)
	b.WriteString("\nReturn the daily calorie target, a short explanation, daily macro targets in grams ")
	b.WriteString("(protein, carbs, fats) and how the target should be adjusted week to week.\n")

	return s.generate(ctx, user, "calorie target", b.String(), CalorieTargetSchema)
}

// HealthReport returns a personalized report on the user's goal and intake.
func (s *AdviceService) HealthReport(ctx context.Context, user *models.User, req *types.HealthReportRequest) (map[string]any, error) {
	p := mergeProfile(user, &req.CalorieTargetRequest)

	var b strings.Builder
	b.WriteString("Generate a detailed personalized health report for the following user with the defined goal:\n")
	p.write(&b)

	daily := req.DailyCalories
	if daily == nil && user.SessionInfo != nil {
		daily = user.SessionInfo.DailyCalories
	}
	fmt.Fprintf(&b, "- Current daily calorie target: %s\n", formatFloat(daily))
	if len(req.Macros) > 0 {
		keys := []string{"protein", "carbs", "fats"}
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if v, ok := req.Macros[k]; ok {
				parts = append(parts, fmt.Sprintf("%s %v g", k, v))
			}
		}
		fmt.Fprintf(&b, "- Current macros: %s\n", strings.Join(parts, ", "))
	}
	if len(req.RecentMeals) > 0 {
		fmt.Fprintf(&b, "- Recent meals: %s\n", strings.Join(req.RecentMeals, "; "))
	}
	b.WriteString("\nInclude a calorie target, macronutrient targets, an overall assessment, observations, ")
	b.WriteString("recommendations, weekly advice, lifestyle tips and a short motivational note.\n")

	return s.generate(ctx, user, "health report", b.String(), HealthReportSchema)
}

func (s *AdviceService) generate(ctx context.Context, user *models.User, kind, prompt string, schema llm.Schema) (map[string]any, error) {
	out, err := s.generator.Generate(ctx, prompt, schema)
	if err == nil {
		return out, nil
	}

	s.logger.ErrorContext(ctx, "generation failed", "kind", kind, "user_id", user.ID, "error", err)

	var parseErr *llm.ParseError
	if errors.As(err, &parseErr) {
		return nil, &ExternalServiceError{
			Op:      "Failed to parse AI response",
			Detail:  parseErr.Detail,
			RawText: parseErr.RawText,
			Err:     err,
		}
	}
	ext := &ExternalServiceError{Op: "Failed to generate " + kind, Detail: err.Error(), Err: err}
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) {
		ext.RawText = apiErr.Body
	}
	return nil, ext
}

type profileFacts struct {
	name   string
	age    *int
	gender *string
	weight *float64
	height *float64
	bmi    *float64
	goal   *string
}

func mergeProfile(user *models.User, req *types.CalorieTargetRequest) profileFacts {
	p := profileFacts{
		name:   user.Name,
		age:    user.Age,
		gender: user.Gender,
		weight: user.Weight,
		height: user.Height,
		bmi:    user.BMI,
		goal:   user.Goal,
	}
	if req == nil {
		return p
	}
	if req.Name != nil {
		p.name = *req.Name
	}
	if req.Age != nil {
		p.age = req.Age
	}
	if req.Gender != nil {
		p.gender = req.Gender
	}
	if req.Weight != nil {
		p.weight = req.Weight
	}
	if req.Height != nil {
		p.height = req.Height
	}
	if req.BMI != nil {
		p.bmi = req.BMI
	} else if p.weight != nil && p.height != nil {
		if bmi, ok := CalculateBMI(*p.weight, *p.height); ok {
			p.bmi = &bmi
		}
	}
	if req.Goal != nil {
		p.goal = req.Goal
	}
	return p
}

func (p profileFacts) write(b *strings.Builder) {
	age := "unknown"
	if p.age != nil {
		age = strconv.Itoa(*p.age)
	}
	fmt.Fprintf(b, "- Name: %s\n", orUnknown(&p.name))
	fmt.Fprintf(b, "- Age: %s\n", age)
	fmt.Fprintf(b, "- Gender: %s\n", orUnknown(p.gender))
	fmt.Fprintf(b, "- Weight: %s kg\n", formatFloat(p.weight))
	fmt.Fprintf(b, "- Height: %s cm\n", formatFloat(p.height))
	fmt.Fprintf(b, "- BMI: %s\n", formatFloat(p.bmi))
	fmt.Fprintf(b, "- Goal: %s\n", orUnknown(p.goal))
}

func orUnknown(s *string) string {
	if s == nil || *s == "" {
		return "unknown"
	}
	return *s
}

func formatFloat(f *float64) string {
	if f == nil {
		return "unknown"
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
