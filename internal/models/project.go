package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Bundle is a pre-curated list of product ids offered by one engineer on one
// project. ItemIDs may be ObjectID hex strings or legacy integer ids.
// Purchases is a best-effort popularity counter.
type Bundle struct {
	Title     string   `bson:"title" json:"title"`
	TitleAr   string   `bson:"titleAr,omitempty" json:"titleAr,omitempty"`
	ItemIDs   []string `bson:"itemIds" json:"itemIds"`
	Purchases int      `bson:"purchases" json:"purchases"`
}

type Engineer struct {
	Name    string   `bson:"name" json:"name"`
	Email   string   `bson:"email,omitempty" json:"email,omitempty"`
	Bundles []Bundle `bson:"bundles" json:"bundles"`
}

// Project is a named collection of engineers, each offering bundles.
type Project struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	NameAr    string             `bson:"nameAr,omitempty" json:"nameAr,omitempty"`
	Engineers []Engineer         `bson:"engineers" json:"engineers"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
