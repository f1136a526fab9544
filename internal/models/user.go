package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account of the fitness app. Admins are users with IsAdmin set.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UID       string             `bson:"uid,omitempty" json:"uid,omitempty"`
	IsAdmin   bool               `bson:"isAdmin,omitempty" json:"isAdmin,omitempty"`
	Profile   UserProfile        `bson:"profile" json:"profile"`
	UpdatedAt *time.Time         `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// UserProfile holds the fields this service reads or writes. Anything else the
// mobile app stores on the profile round-trips through Extra.
type UserProfile struct {
	FullName      string    `bson:"fullName,omitempty"`
	FullNameLower string    `bson:"fullName_lower,omitempty"`
	Email         string    `bson:"email,omitempty"`
	Password      string    `bson:"password,omitempty"`
	ProfileSetup  bool      `bson:"profileSetup"`
	Subscription  bool      `bson:"subscription,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	Extra         bson.M    `bson:",inline"`
}

// MarshalJSON flattens Extra next to the known fields and never emits the password.
func (p UserProfile) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extra)+7)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["fullName"] = p.FullName
	if p.FullNameLower != "" {
		out["fullName_lower"] = p.FullNameLower
	}
	out["email"] = p.Email
	out["profileSetup"] = p.ProfileSetup
	out["subscription"] = p.Subscription
	if !p.CreatedAt.IsZero() {
		out["created_at"] = p.CreatedAt
	}
	delete(out, "password")
	return json.Marshal(out)
}
