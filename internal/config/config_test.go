package config

import (
	"os"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PAYMENT_RETURN_URL",
		"PAYMENT_SUCCESS_URL",
		"PAYMENT_ERROR_URL",
		"DB_NAME",
	} {
		os.Unsetenv(key)
	}

	Load()

	if AppEnv.PaymentReturnURL != "/payment-result" {
		t.Fatalf("expected default return url, got %q", AppEnv.PaymentReturnURL)
	}
	if AppEnv.PaymentSuccessURL != "/payment/success" {
		t.Fatalf("expected default success url, got %q", AppEnv.PaymentSuccessURL)
	}
	// empty by default so failed transactions answer 404 unless a failure
	// page is explicitly configured
	if AppEnv.PaymentErrorURL != "" {
		t.Fatalf("expected empty error url by default, got %q", AppEnv.PaymentErrorURL)
	}
	if AppEnv.DBName != "storefront" {
		t.Fatalf("expected default db name, got %q", AppEnv.DBName)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PAYMENT_ERROR_URL", "https://shop.example.com/payment/failed")
	Load()
	if AppEnv.PaymentErrorURL != "https://shop.example.com/payment/failed" {
		t.Fatalf("expected configured error url, got %q", AppEnv.PaymentErrorURL)
	}
}
