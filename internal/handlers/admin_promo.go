package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

type promoCodeRequest struct {
	Code       string  `json:"code" binding:"required"`
	Percentage float64 `json:"percentage" binding:"required"`
	Expiry     string  `json:"expiry" binding:"required"`
	Active     *bool   `json:"active"`
}

func (r promoCodeRequest) toModel() (models.PromoCode, error) {
	code := strings.ToUpper(strings.TrimSpace(r.Code))
	if code == "" {
		return models.PromoCode{}, errEmptyPromoCode
	}
	if r.Percentage <= 0 || r.Percentage > 100 {
		return models.PromoCode{}, errBadPercentage
	}
	if _, err := parsePromoExpiry(r.Expiry); err != nil {
		return models.PromoCode{}, errBadExpiry
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return models.PromoCode{
		Code:       code,
		Percentage: r.Percentage,
		Expiry:     strings.TrimSpace(r.Expiry),
		Active:     active,
	}, nil
}

var (
	errEmptyPromoCode = promoValidationError("code is required")
	errBadPercentage  = promoValidationError("percentage must be between 0 and 100")
	errBadExpiry      = promoValidationError("expiry must be an ISO date")
)

type promoValidationError string

func (e promoValidationError) Error() string { return string(e) }

func GetAllPromoCodes(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/promocodes"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("promocodes").Find(ctx, bson.M{})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		codes := make([]models.PromoCode, 0)
		if err := cursor.All(ctx, &codes); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, codes)
	}
}

func CreatePromoCode(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/promocodes"
		defer handlePanic(c, route)

		var req promoCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		promo, err := req.toModel()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("promocodes").InsertOne(ctx, promo)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				respondWithError(c, http.StatusConflict, route, "code already exists")
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			promo.ID = id
		}
		c.JSON(http.StatusCreated, promo)
	}
}

func UpdatePromoCode(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/promocodes/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req promoCodeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid body")
			return
		}

		promo, err := req.toModel()
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("promocodes").UpdateOne(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": bson.M{
				"code":       promo.Code,
				"percentage": promo.Percentage,
				"expiry":     promo.Expiry,
				"active":     promo.Active,
			}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "promo code updated"})
	}
}

func DeletePromoCode(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/promocodes/:id"
		defer handlePanic(c, route)

		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		res, err := db.Collection("promocodes").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "promo code not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "promo code deleted"})
	}
}
