package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type validatePromoRequest struct {
	Code string `json:"code" binding:"required"`
}

// ValidatePromo looks up a promo code and honors it only when it is active
// and not expired. Pure read; the discount amount itself is computed by the
// caller from the returned percentage.
func ValidatePromo(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /promo"
		defer handlePanic(c, route)

		var req validatePromoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "code is required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		promo, err := findValidPromo(ctx, db, req.Code, time.Now())
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid or expired promo code")
			return
		}

		log.Printf("[%s] code %s accepted (%.0f%%)", route, promo.Code, promo.Percentage)
		c.JSON(http.StatusOK, promo)
	}
}

type invalidPromoError struct {
	Code string
}

func (e invalidPromoError) Error() string {
	return "invalid or expired promo code"
}

// findValidPromo is shared with the bundle-order flow.
func findValidPromo(ctx context.Context, db *mongo.Database, code string, now time.Time) (models.PromoCode, error) {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return models.PromoCode{}, invalidPromoError{Code: code}
	}

	var promo models.PromoCode
	err := db.Collection("promocodes").FindOne(ctx, bson.M{"code": trimmed}).Decode(&promo)
	if err != nil {
		return models.PromoCode{}, invalidPromoError{Code: trimmed}
	}

	if !promoCodeValid(promo, now) {
		return models.PromoCode{}, invalidPromoError{Code: trimmed}
	}

	return promo, nil
}

// promoCodeValid applies the honor rules: active flag set and expiry date not
// before the current day. An unparseable expiry never validates.
func promoCodeValid(p models.PromoCode, now time.Time) bool {
	if !p.Active {
		return false
	}

	expiry, err := parsePromoExpiry(p.Expiry)
	if err != nil {
		return false
	}

	today := now.UTC().Truncate(24 * time.Hour)
	return !expiry.Before(today)
}

// parsePromoExpiry accepts the ISO date the admin tooling writes plus full
// RFC3339 timestamps found in older documents.
func parsePromoExpiry(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if t, err := time.Parse("2006-01-02", trimmed); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}

// promoDiscount computes the discount a percentage yields on a subtotal. Full
// floating precision; rounding happens only at presentation time.
func promoDiscount(subtotal, percentage float64) float64 {
	return subtotal * percentage / 100
}

// verifiedDiscount recomputes the discount from the validated promo code so
// the client-declared figure never feeds the total check. A declared discount
// with no code behind it is rejected outright.
func verifiedDiscount(promo *models.PromoCode, declared float64, items []models.LineItem) (float64, error) {
	if promo == nil {
		if declared != 0 {
			return 0, errors.New("discount requires a promo code")
		}
		return 0, nil
	}
	return promoDiscount(itemsSubtotal(items), promo.Percentage), nil
}
