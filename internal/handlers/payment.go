package handlers

import (
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/payment"
)

type initiatePaymentRequest struct {
	Amount   float64 `json:"amount" binding:"required"`
	OrderID  string  `json:"orderId"`
	Language string  `json:"language"`
}

// InitiatePayment authenticates against the payment provider and returns a
// self-submitting HTML form pointed at the hosted payment page. No session
// state is kept; the generated track id is the only correlation with the
// later result callback.
func InitiatePayment(gw *payment.Client, returnURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /pay"
		defer handlePanic(c, route)

		var req initiatePaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount <= 0 {
			respondWithError(c, http.StatusBadRequest, route, "amount is required")
			return
		}

		token, err := gw.GetAccessToken(c.Request.Context())
		if err != nil {
			log.Printf("[%s] authentication failed: %v", route, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment authentication failed"})
			return
		}

		trackID := uuid.NewString()

		form, err := gw.BuildRedirectForm(payment.RedirectParams{
			AccessToken: token,
			Amount:      req.Amount,
			TrackID:     trackID,
			Reference:   strings.TrimSpace(req.OrderID),
			ReturnURL:   returnURL,
			Language:    req.Language,
		})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to build payment form")
			return
		}

		log.Printf("[%s] payment initiated, track %s, amount %s", route, trackID, payment.FormatAmount(req.Amount))
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(form))
	}
}

// PaymentResult reconciles the provider callback. Confirmed payments redirect
// to the success page with the track id; failed ones go to the failure page
// (or 404 when none is configured). The order document is never updated here.
func PaymentResult(gw *payment.Client, successURL, errorURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /payment-result"
		defer handlePanic(c, route)

		encryptedRef := strings.TrimSpace(c.Query("ref"))
		if encryptedRef == "" {
			respondWithError(c, http.StatusBadRequest, route, "ref is required")
			return
		}

		result, err := gw.ReconcileResult(c.Request.Context(), encryptedRef)
		if err != nil || result.Status == payment.StatusUnknown {
			log.Printf("[%s] reconciliation failed for ref %s: %v", route, encryptedRef, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "payment status unknown"})
			return
		}

		if result.Status == payment.StatusFailed {
			log.Printf("[%s] transaction failed, track %s: %s", route, result.TrackID, result.Message)
			if errorURL != "" {
				c.Redirect(http.StatusFound, errorURL+"?message="+url.QueryEscape(result.Message))
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid transaction"})
			return
		}

		log.Printf("[%s] transaction confirmed, track %s", route, result.TrackID)
		c.Redirect(http.StatusFound, successURL+"?trackId="+url.QueryEscape(result.TrackID))
	}
}
