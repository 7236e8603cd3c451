package domain

import "time"

// User is an account that owns workouts, templates and custom exercises.
type User struct {
	ID             string    `bson:"_id" json:"id"`
	Email          string    `bson:"email" json:"email"`    // Should be unique
	PasswordHash   string    `bson:"passwordHash" json:"-"` // Never expose this via JSON
	EmailConfirmed bool      `bson:"emailConfirmed" json:"emailConfirmed"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}
