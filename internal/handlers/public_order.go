package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/notify"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderRequest struct {
	Customer      models.OrderCustomer `json:"customer" binding:"required"`
	Items         []models.LineItem    `json:"items" binding:"required"`
	Total         float64              `json:"total"`
	Discount      float64              `json:"discount"`
	PromoCode     string               `json:"promoCode"`
	ShippingFee   float64              `json:"shippingFee"`
	PaymentMethod string               `json:"paymentMethod" binding:"required"`
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, mailer *notify.Mailer, producer *events.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		var promo *models.PromoCode
		if code := strings.TrimSpace(req.PromoCode); code != "" {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
			found, err := findValidPromo(ctx, db, code, time.Now())
			cancel()
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid or expired promo code")
				return
			}
			promo = &found
		}

		discount, err := verifiedDiscount(promo, req.Discount, req.Items)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		order, err := buildOrderFromRequest(req, discount)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
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

		log.Printf("[%s] order %s created, %d items, total %.3f", route, orderID.Hex(), len(order.Items), order.Total)
		dispatchOrderCreated(mailer, producer, order, orderID.Hex())

		c.JSON(http.StatusOK, gin.H{
			"newOrderID": orderID.Hex(),
			"success":    true,
		})
	}
}

// buildOrderFromRequest validates the submission and assembles the pending
// order. The discount is the server-side recomputed figure, not the one the
// client declared.
func buildOrderFromRequest(req createOrderRequest, discount float64) (models.Order, error) {
	if req.PaymentMethod != models.PaymentMethodCOD && req.PaymentMethod != models.PaymentMethodKnet {
		return models.Order{}, errors.New("invalid payment method")
	}

	if err := validateCustomer(req.Customer); err != nil {
		return models.Order{}, err
	}

	if err := validateLineItems(req.Items); err != nil {
		return models.Order{}, err
	}

	if err := reconcileTotal(req.Total, discount, req.ShippingFee, req.Items); err != nil {
		return models.Order{}, err
	}

	return models.Order{
		Customer:      req.Customer,
		Items:         req.Items,
		Total:         req.Total,
		Discount:      discount,
		PromoCode:     strings.TrimSpace(req.PromoCode),
		ShippingFee:   req.ShippingFee,
		PaymentMethod: req.PaymentMethod,
		Status:        models.OrderStatusPending,
		CreatedAt:     time.Now(),
	}, nil
}

// runOrderTransaction enriches cost data, applies the inventory decrement and
// inserts the order, all inside one transaction. Nothing partial ever
// commits. Shared with the bundle-order flow.
func runOrderTransaction(reqCtx context.Context, db *mongo.Database, order *models.Order) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(reqCtx, 10*time.Second)
	defer cancel()

	session, err := db.Client().StartSession()
	if err != nil {
		return primitive.NilObjectID, err
	}
	defer session.EndSession(ctx)

	var orderID primitive.ObjectID
	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if err := enrichCostBasis(sessCtx, db, order.Items); err != nil {
			return nil, err
		}

		if err := decrementInventory(sessCtx, db, inventoryDeltas(order.Items)); err != nil {
			return nil, err
		}

		res, err := db.Collection("orders").InsertOne(sessCtx, order)
		if err != nil {
			return nil, err
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			orderID = id
		}
		return nil, nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	order.ID = orderID
	return orderID, nil
}

/* =========================
   LIST ORDERS
========================= */

type orderStatusProjection struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Status string             `bson:"status" json:"status"`
}

// GetOrders returns the id/status projection for a client-supplied id set,
// so the UI can reconcile its locally cached orders. No sort is applied.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		idsParam := strings.TrimSpace(c.Query("ids"))
		if idsParam == "" {
			respondWithError(c, http.StatusBadRequest, route, "ids is required")
			return
		}

		ids := make([]primitive.ObjectID, 0)
		for _, raw := range strings.Split(idsParam, ",") {
			id, err := primitive.ObjectIDFromHex(strings.TrimSpace(raw))
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		if len(ids) == 0 {
			respondWithError(c, http.StatusBadRequest, route, "no valid ids")
			return
		}

		limit, skip, err := parseLimitSkip(c.Query("limit"), c.Query("skip"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid pagination params")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"_id": bson.M{"$in": ids}}

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		findOptions := options.Find().
			SetProjection(bson.M{"status": 1}).
			SetSkip(skip).
			SetLimit(limit)

		cursor, err := db.Collection("orders").Find(ctx, filter, findOptions)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]orderStatusProjection, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": orders,
			"total":  total,
		})
	}
}

/* =========================
   CANCEL ORDER
========================= */

func CancelOrder(db *mongo.Database, mailer *notify.Mailer, producer *events.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /orders"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Query("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		session, err := db.Client().StartSession()
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer session.EndSession(ctx)

		var canceled models.Order
		_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
			var order models.Order
			err := db.Collection("orders").FindOne(sessCtx, bson.M{"_id": orderID}).Decode(&order)
			if err == mongo.ErrNoDocuments {
				return nil, orderNotFoundError{OrderID: orderID}
			}
			if err != nil {
				return nil, err
			}

			if err := ensureCancelable(order); err != nil {
				return nil, err
			}

			if err := restoreInventory(sessCtx, db, inventoryDeltas(order.Items)); err != nil {
				return nil, err
			}

			now := time.Now()
			_, err = db.Collection("orders").UpdateOne(
				sessCtx,
				bson.M{"_id": orderID},
				bson.M{"$set": bson.M{
					"status":     models.OrderStatusCanceled,
					"canceledAt": now,
				}},
			)
			if err != nil {
				return nil, err
			}

			order.Status = models.OrderStatusCanceled
			order.CanceledAt = &now
			canceled = order
			return nil, nil
		})
		if err != nil {
			var notFoundErr orderNotFoundError
			if errors.As(err, &notFoundErr) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			var canceledErr alreadyCanceledError
			if errors.As(err, &canceledErr) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "order already canceled"})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "failed to cancel order")
			return
		}

		log.Printf("[%s] order %s canceled", route, orderID.Hex())

		if email := strings.TrimSpace(canceled.Customer.Email); email != "" && mailer != nil {
			go mailer.SendOrderCancellation(email, orderID.Hex())
		}
		if producer != nil {
			producer.PublishOrderCanceled(orderID.Hex())
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "order canceled",
		})
	}
}

/* =========================
   TRANSACTION HELPERS
========================= */

// findProductByAnyID tries the native _id first, then the legacy integer id.
// A missing product returns (nil, nil); only store failures return an error.
func findProductByAnyID(ctx context.Context, db *mongo.Database, id primitive.ObjectID, legacyID *int64) (*models.Product, error) {
	if !id.IsZero() {
		var p models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{"_id": id}).Decode(&p)
		if err == nil {
			return &p, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
	}

	if legacyID != nil {
		var p models.Product
		err := db.Collection("products").FindOne(ctx, bson.M{"id": *legacyID}).Decode(&p)
		if err == nil {
			return &p, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, err
		}
	}

	return nil, nil
}

// enrichCostBasis copies the catalog's cost basis onto every line that does
// not already carry one. A product that no longer exists leaves the cost nil;
// the order still goes through.
func enrichCostBasis(ctx context.Context, db *mongo.Database, items []models.LineItem) error {
	for i := range items {
		switch items[i].Kind {
		case models.LineItemProduct:
			pl := items[i].ProductLine
			if pl.AveCost != nil {
				continue
			}
			product, err := findProductByAnyID(ctx, db, pl.Product.ID, pl.Product.LegacyID)
			if err != nil {
				return err
			}
			if product != nil {
				pl.AveCost = product.AveCost
			}
		case models.LineItemBundle:
			for j := range items[i].BundleLine.Items {
				bi := &items[i].BundleLine.Items[j]
				if bi.AveCost != nil {
					continue
				}
				product, err := findProductByAnyID(ctx, db, bi.Product.ID, bi.Product.LegacyID)
				if err != nil {
					return err
				}
				if product != nil {
					bi.AveCost = product.AveCost
				}
			}
		}
	}
	return nil
}

// productFilter targets the catalog document the lookup actually matched, so
// a snapshot carrying a stale ObjectID next to a live legacy id still hits
// the right document.
func productFilter(p *models.Product) bson.M {
	if !p.ID.IsZero() {
		return bson.M{"_id": p.ID}
	}
	return bson.M{"id": *p.LegacyID}
}

// decrementQuery builds the stock-guarded decrement for one delta. The guard
// lives in the filter so the $inc can never drive the counter negative; a
// variety delta guards and mutates the matched array element instead of the
// parent quantity.
func decrementQuery(p *models.Product, d inventoryDelta) (bson.M, bson.M) {
	filter := productFilter(p)
	if d.Variety != "" {
		filter["varieties"] = bson.M{"$elemMatch": bson.M{
			"name":     d.Variety,
			"quantity": bson.M{"$gte": d.Quantity},
		}}
		return filter, bson.M{"$inc": bson.M{"varieties.$.quantity": -d.Quantity}}
	}
	filter["quantity"] = bson.M{"$gte": d.Quantity}
	return filter, bson.M{"$inc": bson.M{"quantity": -d.Quantity}}
}

func restoreQuery(p *models.Product, d inventoryDelta) (bson.M, bson.M) {
	filter := productFilter(p)
	if d.Variety != "" {
		filter["varieties.name"] = d.Variety
		return filter, bson.M{"$inc": bson.M{"varieties.$.quantity": d.Quantity}}
	}
	return filter, bson.M{"$inc": bson.M{"quantity": d.Quantity}}
}

// decrementInventory consumes stock inside the order transaction. A nil
// counter means unlimited stock and is never mutated; a product or variety
// missing from the catalog is skipped, matching the nil-cost resilience rule.
func decrementInventory(ctx context.Context, db *mongo.Database, deltas []inventoryDelta) error {
	for _, d := range deltas {
		product, err := findProductByAnyID(ctx, db, d.ProductID, d.LegacyID)
		if err != nil {
			return err
		}
		stock := trackedStock(product, d)
		if stock == nil {
			continue
		}

		filter, update := decrementQuery(product, d)
		res, err := db.Collection("products").UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return outOfStockError{
				ProductName: stockName(product, d),
				Available:   *stock,
				Requested:   d.Quantity,
			}
		}
	}
	return nil
}

// restoreInventory credits stock back on cancellation, inside the same
// transaction as the status flip. A restore that matches nothing aborts the
// transaction; silently dropping the credit would leak stock.
func restoreInventory(ctx context.Context, db *mongo.Database, deltas []inventoryDelta) error {
	for _, d := range deltas {
		product, err := findProductByAnyID(ctx, db, d.ProductID, d.LegacyID)
		if err != nil {
			return err
		}
		if trackedStock(product, d) == nil {
			log.Printf("[CANCEL] skipping inventory restore for missing or unlimited product %s", deltaKey(d.ProductID, d.LegacyID, d.Variety))
			continue
		}

		filter, update := restoreQuery(product, d)
		res, err := db.Collection("products").UpdateOne(ctx, filter, update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("inventory restore matched no document for %s", deltaKey(d.ProductID, d.LegacyID, d.Variety))
		}
	}
	return nil
}

func dispatchOrderCreated(mailer *notify.Mailer, producer *events.Producer, order models.Order, orderID string) {
	if email := strings.TrimSpace(order.Customer.Email); email != "" && mailer != nil {
		go mailer.SendOrderConfirmation(email, orderID, order.Total)
	}
	if producer != nil {
		producer.PublishOrderCreated(orderID, order.Total, order.Status)
	}
}
