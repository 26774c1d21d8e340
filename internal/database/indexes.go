package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureProductIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("products").Indexes()

	// Legacy integer id used as a fallback lookup key; not every document
	// carries it.
	legacyIDIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}},
		Options: options.Index().
			SetName("legacy_id_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"id": bson.M{
					"$exists": true,
				},
			}),
	}

	log.Println("EnsureProductIndexes: creating legacy_id_unique index")
	_, err := indexes.CreateOne(ctx, legacyIDIndex)
	if err != nil {
		log.Println("EnsureProductIndexes: legacy id index error:", err)
		return err
	}
	log.Println("EnsureProductIndexes: legacy_id_unique index created")
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	statusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("status_createdAt_index"),
	}

	log.Println("EnsureOrderIndexes: creating status_createdAt_index index")
	_, err := indexes.CreateOne(ctx, statusIndex)
	if err != nil {
		log.Println("EnsureOrderIndexes: status index error:", err)
		return err
	}
	log.Println("EnsureOrderIndexes: status_createdAt_index index created")
	return nil
}

func EnsurePromoCodeIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("promocodes").Indexes()

	codeIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "code", Value: 1}},
		Options: options.Index().
			SetName("code_unique").
			SetUnique(true),
	}

	log.Println("EnsurePromoCodeIndexes: creating code_unique index")
	_, err := indexes.CreateOne(ctx, codeIndex)
	if err != nil {
		log.Println("EnsurePromoCodeIndexes: code index error:", err)
		return err
	}
	log.Println("EnsurePromoCodeIndexes: code_unique index created")
	return nil
}
