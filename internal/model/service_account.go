package model

import "time"

// ServiceAccount is an automation identity allowed to call the admin and
// query endpoints. Secrets are stored bcrypt-hashed.
type ServiceAccount struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	SecretHash string    `json:"-"`
	Disabled   bool      `json:"disabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
