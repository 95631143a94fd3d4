package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SessionInfo is the nutrition target the client last accepted.
// Fields stay nil when unknown and serialize as null.
type SessionInfo struct {
	DailyCalories *float64          `json:"dailyCalories"`
	Macros        SessionInfoMacros `json:"macros"`
}

// SessionInfoMacros holds the per-day macro targets in grams.
type SessionInfoMacros struct {
	Protein *float64 `json:"protein"`
	Carbs   *float64 `json:"carbs"`
	Fats    *float64 `json:"fats"`
}

// ParseSessionInfo accepts either a JSON object or a JSON string that
// itself encodes an object. Anything unparseable yields the empty shape.
// Fields are read independently: one with the wrong type stays nil and
// the rest are kept. Numeric strings count as numbers.
func ParseSessionInfo(raw json.RawMessage) SessionInfo {
	var info SessionInfo
	if len(raw) == 0 {
		return info
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return SessionInfo{}
	}

	info.DailyCalories = parseNumber(obj["dailyCalories"])

	var macros map[string]json.RawMessage
	if err := json.Unmarshal(obj["macros"], &macros); err == nil {
		info.Macros.Protein = parseNumber(macros["protein"])
		info.Macros.Carbs = parseNumber(macros["carbs"])
		info.Macros.Fats = parseNumber(macros["fats"])
	}
	return info
}

// parseNumber reads a JSON number or numeric string. Missing, null and
// non-numeric values give nil.
func parseNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 {
		return nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return &f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Value implements the driver.Valuer interface
func (s SessionInfo) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface. A stored value that is not
// valid JSON rehydrates as the empty shape instead of failing the read.
func (s *SessionInfo) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = SessionInfo{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported session info type %T", value)
	}
	*s = ParseSessionInfo(raw)
	return nil
}
