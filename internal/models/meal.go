package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultMealType is stored when the client omits a meal type.
const DefaultMealType = "Unknown"

// Macros is the per-meal macronutrient snapshot in grams.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fats    float64 `json:"fats"`
}

// Value implements the driver.Valuer interface
func (m Macros) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (m *Macros) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*m = Macros{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported macros type %T", value)
	}
	if len(raw) == 0 {
		*m = Macros{}
		return nil
	}
	return json.Unmarshal(raw, m)
}

// Meal is a persisted, analyzed meal photo. Nutrition values are a
// snapshot taken at creation and never recomputed.
type Meal struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	MealType  string    `gorm:"column:meal_type;size:50" json:"mealType"`
	Calories  float64   `json:"calories"`
	Protein   float64   `json:"protein"`
	Carbs     float64   `json:"carbs"`
	Fats      float64   `json:"fats"`
	Items     string    `gorm:"type:text;not null" json:"items"`
	Image     string    `gorm:"size:255" json:"-"`
	Macros    Macros    `gorm:"type:text" json:"macros"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}
