package types

// GoogleLoginRequest carries the identity-provider ID token.
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// CalorieTargetRequest describes the person a calorie target is computed
// for. Missing fields are filled from the stored profile.
type CalorieTargetRequest struct {
	Name   *string  `json:"name,omitempty"`
	Age    *int     `json:"age,omitempty"`
	Gender *string  `json:"gender,omitempty"`
	Weight *float64 `json:"weight,omitempty"`
	Height *float64 `json:"height,omitempty"`
	BMI    *float64 `json:"bmi,omitempty"`
	Goal   *string  `json:"goal,omitempty"`
}

// HealthReportRequest extends the calorie target inputs with the recent
// intake the report should comment on.
type HealthReportRequest struct {
	CalorieTargetRequest
	DailyCalories *float64       `json:"dailyCalories,omitempty"`
	Macros        map[string]any `json:"macros,omitempty"`
	RecentMeals   []string       `json:"recentMeals,omitempty"`
}
