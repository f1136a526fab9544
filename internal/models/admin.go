package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is the cached profile of a signed-in staff member.
type Admin struct {
	UID      string      `json:"uid"`
	IsAdmin  bool        `json:"isAdmin"`
	Profile  UserProfile `json:"profile"`
	LoggedIn time.Time   `json:"loggedInAt"`
}

// NewAdmin builds the cached admin profile from its user document.
func NewAdmin(u *User, at time.Time) Admin {
	uid := u.UID
	if uid == "" {
		uid = u.ID.Hex()
	}
	return Admin{UID: uid, IsAdmin: u.IsAdmin, Profile: u.Profile, LoggedIn: at}
}

// Credential is the identity record used for email/password sign-in. Its ID
// is the ID of the matching user document.
type Credential struct {
	ID           primitive.ObjectID `bson:"_id"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}
