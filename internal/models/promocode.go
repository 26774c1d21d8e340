package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PromoCode is a time-bounded percentage discount. Expiry is stored as an ISO
// date string; only active, unexpired codes are honored.
type PromoCode struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code       string             `bson:"code" json:"code"`
	Percentage float64            `bson:"percentage" json:"percentage"`
	Expiry     string             `bson:"expiry" json:"expiry"`
	Active     bool               `bson:"active" json:"active"`
}
