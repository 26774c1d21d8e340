package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCanceled  = "canceled"
)

const (
	PaymentMethodCOD  = "cod"
	PaymentMethodKnet = "knet"
)

// Line item discriminants.
const (
	LineItemProduct = "product"
	LineItemBundle  = "bundle"
)

// ProductLine is an ordinary cart line: the full product snapshot is embedded
// at add-to-cart time so prices are frozen at order time. AveCost is resolved
// from the catalog during order creation and stays nil when the product no
// longer exists.
type ProductLine struct {
	Product  Product  `bson:"product" json:"product"`
	Variety  *Variety `bson:"variety,omitempty" json:"variety,omitempty"`
	Quantity int      `bson:"quantity" json:"quantity"`
	Welding  bool     `bson:"welding,omitempty" json:"welding,omitempty"`
	AveCost  *float64 `bson:"aveCost" json:"aveCost"`
}

// EffectivePrice returns the variety price when one is selected.
func (pl ProductLine) EffectivePrice() float64 {
	if pl.Variety != nil {
		return pl.Variety.Price
	}
	return pl.Product.Price
}

// BundleEngineer is the contact snapshot stored on a bundle line.
type BundleEngineer struct {
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
}

// BundleSelection records which engineer/bundle pair a bundle item came from.
type BundleSelection struct {
	EngineerIndex int `bson:"engineerIndex" json:"engineerIndex"`
	BundleIndex   int `bson:"bundleIndex" json:"bundleIndex"`
}

// BundleItem is one resolved product inside a bundle line.
type BundleItem struct {
	Product  Product  `bson:"product" json:"product"`
	Quantity int      `bson:"quantity" json:"quantity"`
	AveCost  *float64 `bson:"aveCost" json:"aveCost"`
}

// BundleLine is a pre-built project bundle ordered as a unit. Quantity is a
// multiplier applied to the whole bundle.
type BundleLine struct {
	ProjectID   string            `bson:"projectId" json:"projectId"`
	ProjectName string            `bson:"projectName" json:"projectName"`
	Engineers   []BundleEngineer  `bson:"engineers" json:"engineers"`
	Selections  []BundleSelection `bson:"selections" json:"selections"`
	Items       []BundleItem      `bson:"items" json:"items"`
	Quantity    int               `bson:"quantity" json:"quantity"`
}

// LineItem is a tagged union: exactly one of ProductLine/BundleLine is set,
// and Kind says which. Consumers must switch on Kind, never on field presence.
type LineItem struct {
	Kind        string       `bson:"kind" json:"kind"`
	ProductLine *ProductLine `bson:"productLine,omitempty" json:"productLine,omitempty"`
	BundleLine  *BundleLine  `bson:"bundleLine,omitempty" json:"bundleLine,omitempty"`
}

// OrderCustomer captures the contact and delivery details submitted with an
// order. There are no customer accounts; the snapshot lives on the order.
type OrderCustomer struct {
	Name   string `bson:"name" json:"name"`
	Phone  string `bson:"phone" json:"phone"`
	Email  string `bson:"email,omitempty" json:"email,omitempty"`
	Area   string `bson:"area" json:"area"`
	Block  string `bson:"block" json:"block"`
	Street string `bson:"street" json:"street"`
	Avenue string `bson:"avenue,omitempty" json:"avenue,omitempty"`
	House  string `bson:"house" json:"house"`
}

// Order is the persisted order document. It is never deleted; cancellation
// only flips Status and stamps CanceledAt.
type Order struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Customer      OrderCustomer      `bson:"customer" json:"customer"`
	Items         []LineItem         `bson:"items" json:"items"`
	Total         float64            `bson:"total" json:"total"`
	Discount      float64            `bson:"discount" json:"discount"`
	PromoCode     string             `bson:"promoCode" json:"promoCode"`
	ShippingFee   float64            `bson:"shippingFee" json:"shippingFee"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	Status        string             `bson:"status" json:"status"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	CanceledAt    *time.Time         `bson:"canceledAt,omitempty" json:"canceledAt,omitempty"`
}
