package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/notify"
)

type bundleOrderRequest struct {
	ProjectID     string               `json:"projectId" binding:"required"`
	EngineerIndex int                  `json:"engineerIndex"`
	BundleIndex   int                  `json:"bundleIndex"`
	Quantity      int                  `json:"quantity"`
	PromoCode     string               `json:"promoCode"`
	ShippingFee   float64              `json:"shippingFee"`
	PaymentMethod string               `json:"paymentMethod"`
	Customer      models.OrderCustomer `json:"customer" binding:"required"`
}

type bundleNotFoundError struct {
	Reason string
}

func (e bundleNotFoundError) Error() string {
	return e.Reason + " not found"
}

type bundleProductsMissingError struct {
	Missing []string
}

func (e bundleProductsMissingError) Error() string {
	return "some products not found"
}

// bundleResolution is a fully expanded bundle: every item id resolved to a
// product snapshot and the total already summed.
type bundleResolution struct {
	Project  models.Project
	Engineer models.Engineer
	Bundle   models.Bundle
	Items    []models.BundleItem
	Total    float64
}

// PlaceBundleOrder expands a project/engineer/bundle selection into priced
// line items and creates the order through the same transactional path as
// ordinary checkouts.
func PlaceBundleOrder(db *mongo.Database, mailer *notify.Mailer, producer *events.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /projects/bundle-order"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req bundleOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		if req.Quantity <= 0 {
			req.Quantity = 1
		}
		if req.PaymentMethod == "" {
			req.PaymentMethod = models.PaymentMethodCOD
		}
		if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodKnet {
			respondWithError(c, http.StatusBadRequest, route, "invalid payment method")
			return
		}
		if err := validateCustomer(req.Customer); err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		projectID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.ProjectID))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid projectId")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		resolution, err := resolveBundle(ctx, db, projectID, req.EngineerIndex, req.BundleIndex)
		if err != nil {
			var notFoundErr bundleNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
				return
			}
			var missingErr bundleProductsMissingError
			if errors.As(err, &missingErr) {
				c.JSON(http.StatusNotFound, gin.H{"error": missingErr.Error(), "missing": missingErr.Missing})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		subtotal := resolution.Total * float64(req.Quantity)

		discount := 0.0
		promoCode := strings.TrimSpace(req.PromoCode)
		if promoCode != "" {
			promo, err := findValidPromo(ctx, db, promoCode, time.Now())
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid or expired promo code")
				return
			}
			discount = promoDiscount(subtotal, promo.Percentage)
		}

		engineers := make([]models.BundleEngineer, 0, len(resolution.Project.Engineers))
		for _, eng := range resolution.Project.Engineers {
			engineers = append(engineers, models.BundleEngineer{Name: eng.Name, Email: eng.Email})
		}

		order := models.Order{
			Customer: req.Customer,
			Items: []models.LineItem{{
				Kind: models.LineItemBundle,
				BundleLine: &models.BundleLine{
					ProjectID:   resolution.Project.ID.Hex(),
					ProjectName: resolution.Project.Name,
					Engineers:   engineers,
					Selections: []models.BundleSelection{{
						EngineerIndex: req.EngineerIndex,
						BundleIndex:   req.BundleIndex,
					}},
					Items:    resolution.Items,
					Quantity: req.Quantity,
				},
			}},
			Total:         subtotal - discount + req.ShippingFee,
			Discount:      discount,
			PromoCode:     promoCode,
			ShippingFee:   req.ShippingFee,
			PaymentMethod: req.PaymentMethod,
			Status:        models.OrderStatusPending,
			CreatedAt:     time.Now(),
		}

		orderID, err := runOrderTransaction(c.Request.Context(), db, &order)
		if err != nil {
			var stockErr outOfStockError
			if errors.As(err, &stockErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "product out of stock",
					"product":   stockErr.ProductName,
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "failed to create order")
			return
		}

		// Popularity counter, best effort. The order is already committed.
		incrementBundlePurchases(db, projectID, req.EngineerIndex, req.BundleIndex)

		log.Printf("[%s] bundle order %s created for project %s", route, orderID.Hex(), resolution.Project.Name)
		dispatchOrderCreated(mailer, producer, order, orderID.Hex())

		c.JSON(http.StatusOK, gin.H{
			"newOrderID": orderID.Hex(),
			"success":    true,
		})
	}
}

// resolveBundle loads the project and expands the selected bundle against
// the live catalog.
func resolveBundle(ctx context.Context, db *mongo.Database, projectID primitive.ObjectID, engineerIdx, bundleIdx int) (bundleResolution, error) {
	var project models.Project
	err := db.Collection("projects").FindOne(ctx, bson.M{"_id": projectID}).Decode(&project)
	if err == mongo.ErrNoDocuments {
		return bundleResolution{}, bundleNotFoundError{Reason: "project"}
	}
	if err != nil {
		return bundleResolution{}, err
	}

	return expandBundle(project, engineerIdx, bundleIdx, func(itemID string) (*models.Product, error) {
		return findProductByItemID(ctx, db, itemID)
	})
}

// expandBundle picks the engineer/bundle by index and resolves every item id
// into a product snapshot through the lookup. Any unresolvable id fails the
// whole expansion; partial bundles are never returned.
func expandBundle(project models.Project, engineerIdx, bundleIdx int, lookup func(string) (*models.Product, error)) (bundleResolution, error) {
	if engineerIdx < 0 || engineerIdx >= len(project.Engineers) {
		return bundleResolution{}, bundleNotFoundError{Reason: "engineer"}
	}
	engineer := project.Engineers[engineerIdx]

	if bundleIdx < 0 || bundleIdx >= len(engineer.Bundles) {
		return bundleResolution{}, bundleNotFoundError{Reason: "bundle"}
	}
	bundle := engineer.Bundles[bundleIdx]

	items := make([]models.BundleItem, 0, len(bundle.ItemIDs))
	missing := make([]string, 0)
	total := 0.0

	for _, itemID := range bundle.ItemIDs {
		product, err := lookup(itemID)
		if err != nil {
			return bundleResolution{}, err
		}
		if product == nil {
			missing = append(missing, itemID)
			continue
		}

		items = append(items, models.BundleItem{
			Product:  *product,
			Quantity: 1,
			AveCost:  product.AveCost,
		})
		total += product.Price
	}

	if len(missing) > 0 {
		return bundleResolution{}, bundleProductsMissingError{Missing: missing}
	}

	return bundleResolution{
		Project:  project,
		Engineer: engineer,
		Bundle:   bundle,
		Items:    items,
		Total:    total,
	}, nil
}

// findProductByItemID resolves a bundle item id, which may be an ObjectID hex
// string or a legacy integer id.
func findProductByItemID(ctx context.Context, db *mongo.Database, itemID string) (*models.Product, error) {
	trimmed := strings.TrimSpace(itemID)

	if oid, err := primitive.ObjectIDFromHex(trimmed); err == nil {
		return findProductByAnyID(ctx, db, oid, nil)
	}

	if legacy, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return findProductByAnyID(ctx, db, primitive.NilObjectID, &legacy)
	}

	return nil, nil
}

func incrementBundlePurchases(db *mongo.Database, projectID primitive.ObjectID, engineerIdx, bundleIdx int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	field := fmt.Sprintf("engineers.%d.bundles.%d.purchases", engineerIdx, bundleIdx)
	_, err := db.Collection("projects").UpdateOne(
		ctx,
		bson.M{"_id": projectID},
		bson.M{"$inc": bson.M{field: 1}},
	)
	if err != nil {
		log.Printf("[BUNDLE] purchases increment failed for project %s: %v", projectID.Hex(), err)
	}
}
