package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNormalizeProductDocumentCoercesNumericTypes(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":     "Cement bag",
		"price":    2.750,
		"id":       float64(42),
		"quantity": int64(7),
		"aveCost":  int32(2),
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.LegacyID == nil || *product.LegacyID != 42 {
		t.Fatalf("expected legacy id 42, got %+v", product.LegacyID)
	}
	if product.Quantity == nil || *product.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %+v", product.Quantity)
	}
	if product.AveCost == nil || *product.AveCost != 2 {
		t.Fatalf("expected aveCost 2, got %+v", product.AveCost)
	}
}

func TestNormalizeProductDocumentKeepsUnlimitedStockNil(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":  "Sand",
		"price": 1.250,
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if product.Quantity != nil {
		t.Fatalf("expected nil quantity for unlimited stock, got %v", *product.Quantity)
	}
	if product.AveCost != nil {
		t.Fatalf("expected nil aveCost when absent, got %v", *product.AveCost)
	}
}

func TestNormalizeProductDocumentLegacyImageString(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":   "Tile",
		"price":  5.0,
		"images": "tile.jpg",
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if len(product.Images) != 1 || product.Images[0] != "tile.jpg" {
		t.Fatalf("expected single-image list, got %+v", product.Images)
	}
}

func TestNormalizeProductDocumentVarietyQuantities(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":  "Paint",
		"price": 8.0,
		"varieties": bson.A{
			bson.M{"name": "1L", "price": 8.0, "quantity": int64(3)},
			bson.M{"name": "5L", "price": 30.0},
		},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if len(product.Varieties) != 2 {
		t.Fatalf("expected 2 varieties, got %d", len(product.Varieties))
	}
	if product.Varieties[0].Quantity == nil || *product.Varieties[0].Quantity != 3 {
		t.Fatalf("expected variety quantity 3, got %+v", product.Varieties[0].Quantity)
	}
	if product.Varieties[1].Quantity != nil {
		t.Fatal("expected nil quantity for unlimited variety")
	}
	if !product.HasVarieties() {
		t.Fatal("expected HasVarieties to be true")
	}
}
