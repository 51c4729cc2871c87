package domain

import "time"

// User is the credential record consumed by the session manager. The
// session manager only ever reads password state; mutation belongs to the
// user service.
type User struct {
	ID           string    `bson:"_id,omitempty" json:"id"`
	Email        string    `bson:"email" json:"email"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	FirstName    string    `bson:"first_name,omitempty" json:"firstName,omitempty"`
	LastName     string    `bson:"last_name,omitempty" json:"lastName,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updatedAt"`
}
