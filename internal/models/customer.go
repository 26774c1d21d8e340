package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Customer backs the admin login only. Storefront buyers have no accounts;
// their details are embedded on each order as OrderCustomer.
type Customer struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	IsActive     bool               `bson:"isActive" json:"isActive"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
