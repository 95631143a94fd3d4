package models

import (
	"time"
)

// User is an account created on first external-identity login.
type User struct {
	ID            uint         `gorm:"primarykey" json:"id"`
	GoogleID      *string      `gorm:"column:google_id;size:255;uniqueIndex" json:"googleId"`
	Username      string       `gorm:"size:150;not null;uniqueIndex" json:"-"`
	Email         string       `gorm:"size:254" json:"email"`
	Name          string       `gorm:"size:150" json:"name"`
	Age           *int         `json:"age"`
	Gender        *string      `gorm:"size:50" json:"gender"`
	Weight        *float64     `json:"weight"`
	Height        *float64     `json:"height"`
	Goal          *string      `gorm:"size:255" json:"goal"`
	BMI           *float64     `gorm:"column:bmi" json:"bmi"`
	ProfileFilled bool         `gorm:"not null;default:false" json:"profileFilled"`
	SessionInfo   *SessionInfo `gorm:"type:text" json:"sessionInfo"`
	CreatedAt     time.Time    `json:"date_joined"`
	UpdatedAt     time.Time    `json:"-"`
}

// SubjectID returns the external identity subject, or "" if unset.
func (u *User) SubjectID() string {
	if u.GoogleID == nil {
		return ""
	}
	return *u.GoogleID
}
