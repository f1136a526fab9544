package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PricingPlanSlots is the number of plans shown to app users.
const PricingPlanSlots = 4

type PricingPlan struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Duration       string             `bson:"duration" json:"duration"`
	Price          float64            `bson:"price" json:"price"`
	CustomProducts float64            `bson:"customProducts" json:"customProducts"`
	PlanNumber     int                `bson:"planNumber" json:"planNumber"`
}

// DiscountID is the id of the single discount document.
const DiscountID = "current"

type Discount struct {
	ID        string    `bson:"_id,omitempty" json:"-"`
	Value     float64   `bson:"discount" json:"discount"`
	IsActive  bool      `bson:"isActive" json:"isActive"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
