package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const dbPingTimeout = 2 * time.Second

// handlePanic turns a handler panic into a 500 response. Deferred at the top
// of every route so one bad request cannot take the process down.
func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// ensureDBConnection pings the primary before a handler does any real work,
// so a lost connection surfaces as 503 instead of a mid-flight failure.
func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

// respondWithError logs the failure and aborts with a JSON error body.
func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
