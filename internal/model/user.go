package model

import "time"

// DefaultTimezone is assigned to users who never chose one.
const DefaultTimezone = "UTC"

// User is an account owning files, jobs and notifications.
// Password and OTP hashes never leave the service layer.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email"`
	HashedPassword string     `json:"-"`
	IsActive       bool       `json:"is_active"`
	OTP            *string    `json:"-"`
	OTPCreatedAt   *time.Time `json:"-"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	PhoneNumber    string     `json:"phone_number"`
	Timezone       string     `json:"timezone"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}
