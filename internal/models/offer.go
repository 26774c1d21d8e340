package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Offer is promotional banner content shown on the storefront.
type Offer struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	TitleAr   string             `bson:"titleAr,omitempty" json:"titleAr,omitempty"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
	IsActive  bool               `bson:"isActive" json:"isActive"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
