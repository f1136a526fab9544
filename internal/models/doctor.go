package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Doctor struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName       string             `bson:"fullname" json:"fullname"`
	Email          string             `bson:"email" json:"email"`
	Password       string             `bson:"password,omitempty" json:"-"`
	Specialty      string             `bson:"specialty" json:"specialty"`
	Phone          string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Experience     string             `bson:"experience,omitempty" json:"experience,omitempty"`
	Qualifications string             `bson:"qualifications,omitempty" json:"qualifications,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
