package domain

import "time"

// Credential is a login credential, stored apart from the directory record.
type Credential struct {
	Email        string    `json:"email" bson:"_id"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
