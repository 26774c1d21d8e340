package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variety is a sub-SKU carrying its own price and stock. When a product has
// varieties the effective price/stock comes from the selected variety, never
// from the parent product.
type Variety struct {
	Name     string  `bson:"name" json:"name"`
	NameAr   string  `bson:"nameAr,omitempty" json:"nameAr,omitempty"`
	Price    float64 `bson:"price" json:"price"`
	Quantity *int    `bson:"quantity" json:"quantity"`
}

// Product is a catalog entity. The catalog is maintained by an external
// process; this service only reads it.
//
// Quantity is nil for unlimited stock. LegacyID is the secondary integer id
// some older documents carry; lookups try _id first and fall back to it.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID  *int64             `bson:"id,omitempty" json:"legacyId,omitempty"`
	Name      string             `bson:"name" json:"name"`
	NameAr    string             `bson:"nameAr,omitempty" json:"nameAr,omitempty"`
	Price     float64            `bson:"price" json:"price"`
	Images    StringList         `bson:"images,omitempty" json:"images,omitempty"`
	Quantity  *int               `bson:"quantity" json:"quantity"`
	AveCost   *float64           `bson:"aveCost" json:"aveCost"`
	Discount  *float64           `bson:"discount,omitempty" json:"discount,omitempty"`
	Varieties []Variety          `bson:"varieties,omitempty" json:"varieties,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

func (p Product) HasVarieties() bool {
	return len(p.Varieties) > 0
}

// FindVariety returns the named variety, or nil when the product carries none
// by that name.
func (p Product) FindVariety(name string) *Variety {
	for i := range p.Varieties {
		if p.Varieties[i].Name == name {
			return &p.Varieties[i]
		}
	}
	return nil
}
