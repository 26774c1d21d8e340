package handlers

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/models"
)

// coerceInt widens whatever numeric BSON type a legacy document used into a
// plain int, or nil when the field is absent/null (unlimited stock).
func coerceInt(val interface{}) interface{} {
	switch typed := val.(type) {
	case int32:
		return int(typed)
	case int64:
		return int(typed)
	case float64:
		return int(typed)
	case int:
		return typed
	default:
		return nil
	}
}

func coerceFloat(val interface{}) interface{} {
	switch typed := val.(type) {
	case int32:
		return float64(typed)
	case int64:
		return float64(typed)
	case float64:
		return typed
	default:
		return nil
	}
}

// normalizeProductDocument smooths over the shape drift in legacy catalog
// documents (numeric types, string-vs-array images, float legacy ids) before
// decoding into the model.
func normalizeProductDocument(raw bson.M) (models.Product, error) {
	if val, ok := raw["id"]; ok {
		switch typed := val.(type) {
		case float64:
			raw["id"] = int64(typed)
		case int32:
			raw["id"] = int64(typed)
		}
	}

	if val, ok := raw["quantity"]; ok && val != nil {
		raw["quantity"] = coerceInt(val)
	}
	if val, ok := raw["aveCost"]; ok && val != nil {
		raw["aveCost"] = coerceFloat(val)
	}
	if val, ok := raw["discount"]; ok && val != nil {
		raw["discount"] = coerceFloat(val)
	}

	if varieties, ok := raw["varieties"].(bson.A); ok {
		for _, entry := range varieties {
			if v, ok := entry.(bson.M); ok {
				if val, ok := v["quantity"]; ok && val != nil {
					v["quantity"] = coerceInt(val)
				}
			}
		}
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	if err := bson.Unmarshal(data, &p); err != nil {
		return models.Product{}, err
	}

	return p, nil
}

func decodeProducts(ctx context.Context, cursor *mongo.Cursor) ([]models.Product, error) {
	products := make([]models.Product, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		product, err := normalizeProductDocument(raw)
		if err != nil {
			return nil, err
		}

		products = append(products, product)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
