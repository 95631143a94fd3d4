package types

import (
	"encoding/json"
)

// UpdateProfileRequest is a partial profile update. A nil field was not
// sent (or sent as null) and leaves the stored value untouched.
type UpdateProfileRequest struct {
	Name        *string         `json:"name,omitempty"`
	Age         *int            `json:"age,omitempty"`
	Gender      *string         `json:"gender,omitempty"`
	Weight      *float64        `json:"weight,omitempty"`
	Height      *float64        `json:"height,omitempty"`
	Goal        *string         `json:"goal,omitempty"`
	SessionInfo json.RawMessage `json:"sessionInfo,omitempty"`
}

// HasSessionInfo reports whether a non-empty sessionInfo value was sent.
// null, "", {} and false are treated as absent.
func (r *UpdateProfileRequest) HasSessionInfo() bool {
	switch string(r.SessionInfo) {
	case "", "null", `""`, "{}", "false", "0", "[]":
		return false
	}
	return true
}
