package handlers

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

func TestPromoCodeValid(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		promo models.PromoCode
		want  bool
	}{
		{
			"active far-future code",
			models.PromoCode{Code: "SAVE10", Percentage: 10, Expiry: "2099-01-01", Active: true},
			true,
		},
		{
			"inactive code",
			models.PromoCode{Code: "SAVE10", Percentage: 10, Expiry: "2099-01-01", Active: false},
			false,
		},
		{
			"expired yesterday",
			models.PromoCode{Code: "OLD", Percentage: 5, Expiry: "2026-03-14", Active: true},
			false,
		},
		{
			"expires today",
			models.PromoCode{Code: "TODAY", Percentage: 5, Expiry: "2026-03-15", Active: true},
			true,
		},
		{
			"rfc3339 expiry accepted",
			models.PromoCode{Code: "RFC", Percentage: 5, Expiry: "2099-01-01T00:00:00Z", Active: true},
			true,
		},
		{
			"garbage expiry never validates",
			models.PromoCode{Code: "BAD", Percentage: 5, Expiry: "soon", Active: true},
			false,
		},
	}

	for _, tc := range tests {
		if got := promoCodeValid(tc.promo, now); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestPromoDiscount(t *testing.T) {
	if got := promoDiscount(100.000, 10); got != 10.000 {
		t.Fatalf("expected 10.000 KD discount on 100.000 KD at 10%%, got %v", got)
	}
	if got := promoDiscount(13.500, 0); got != 0 {
		t.Fatalf("expected zero discount at 0%%, got %v", got)
	}
}

func TestPromoDiscountKeepsFullPrecision(t *testing.T) {
	got := promoDiscount(9.990, 7.5)
	want := 9.990 * 7.5 / 100
	if got != want {
		t.Fatalf("expected unrounded %v, got %v", want, got)
	}
}

func TestVerifiedDiscountIgnoresDeclaredFigure(t *testing.T) {
	items := []models.LineItem{productLineItem(primitive.NewObjectID(), 10.000, 1)}
	promo := &models.PromoCode{Code: "SAVE10", Percentage: 10, Expiry: "2099-01-01", Active: true}

	// the inflated declared value plays no part
	got, err := verifiedDiscount(promo, 9.000, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1.000 {
		t.Fatalf("expected recomputed discount 1.000, got %v", got)
	}
}

func TestVerifiedDiscountRequiresCode(t *testing.T) {
	items := []models.LineItem{productLineItem(primitive.NewObjectID(), 10.000, 1)}

	if _, err := verifiedDiscount(nil, 7.000, items); err == nil {
		t.Fatal("expected declared discount without a code to be rejected")
	}

	got, err := verifiedDiscount(nil, 0, items)
	if err != nil || got != 0 {
		t.Fatalf("expected zero discount without a code, got %v err=%v", got, err)
	}
}

func TestInflatedDiscountFailsTotalCheck(t *testing.T) {
	items := []models.LineItem{productLineItem(primitive.NewObjectID(), 10.000, 1)}
	promo := &models.PromoCode{Code: "SAVE10", Percentage: 10, Expiry: "2099-01-01", Active: true}

	// client declares total 3.000 as if a 7.000 discount applied; the real
	// code only yields 1.000, so reconciliation rejects the order
	discount, err := verifiedDiscount(promo, 7.000, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reconcileTotal(3.000, discount, 0, items); err == nil {
		t.Fatal("expected total mismatch for inflated discount")
	}
	if err := reconcileTotal(9.000, discount, 0, items); err != nil {
		t.Fatalf("expected honest total to pass: %v", err)
	}
}
