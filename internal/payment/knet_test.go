package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestProvider(t *testing.T, tokenStatus, tokenValue, txnStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			var creds map[string]string
			if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
				t.Errorf("token endpoint got invalid body: %v", err)
			}
			if creds["clientId"] != "merchant-1" || creds["clientSecret"] != "s3cret" {
				t.Errorf("token endpoint got wrong credentials: %v", creds)
			}
			json.NewEncoder(w).Encode(map[string]string{
				"status": tokenStatus,
				"token":  tokenValue,
			})
		case "/transaction":
			var req map[string]string
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("transaction endpoint got invalid body: %v", err)
			}
			if req["token"] != tokenValue {
				t.Errorf("transaction endpoint expected token %q, got %q", tokenValue, req["token"])
			}
			json.NewEncoder(w).Encode(map[string]string{
				"status":    txnStatus,
				"trackId":   "track-42",
				"reference": req["reference"],
				"message":   "done",
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func TestGetAccessToken(t *testing.T) {
	srv := newTestProvider(t, "1", "tok-abc", "1")
	defer srv.Close()

	c := NewClient(srv.URL, "merchant-1", "s3cret", "enc-key")
	token, err := c.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken returned error: %v", err)
	}
	if token != "tok-abc" {
		t.Fatalf("expected token tok-abc, got %q", token)
	}
}

func TestGetAccessTokenRejectsBadStatus(t *testing.T) {
	srv := newTestProvider(t, "0", "tok-abc", "1")
	defer srv.Close()

	c := NewClient(srv.URL, "merchant-1", "s3cret", "enc-key")
	_, err := c.GetAccessToken(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestGetAccessTokenRejectsEmptyToken(t *testing.T) {
	srv := newTestProvider(t, "1", "", "1")
	defer srv.Close()

	c := NewClient(srv.URL, "merchant-1", "s3cret", "enc-key")
	_, err := c.GetAccessToken(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed for empty token, got %v", err)
	}
}

func TestReconcileResultStatusMapping(t *testing.T) {
	tests := []struct {
		providerStatus string
		want           Status
		wantErr        bool
	}{
		{"1", StatusConfirmed, false},
		{"0", StatusFailed, false},
		{"-1", StatusFailed, false},
		{"CAPTURED", StatusUnknown, true},
	}

	for _, tc := range tests {
		srv := newTestProvider(t, "1", "tok-abc", tc.providerStatus)
		c := NewClient(srv.URL, "merchant-1", "s3cret", "enc-key")

		result, err := c.ReconcileResult(context.Background(), "enc-ref-1")
		if tc.wantErr && err == nil {
			t.Fatalf("status %q: expected error", tc.providerStatus)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("status %q: unexpected error: %v", tc.providerStatus, err)
		}
		if result.Status != tc.want {
			t.Fatalf("status %q: expected %v, got %v", tc.providerStatus, tc.want, result.Status)
		}
		if !tc.wantErr && result.Reference != "enc-ref-1" {
			t.Fatalf("status %q: reference not echoed, got %q", tc.providerStatus, result.Reference)
		}
		srv.Close()
	}
}

func TestReconcileResultFailsWhenAuthFails(t *testing.T) {
	srv := newTestProvider(t, "0", "", "1")
	defer srv.Close()

	c := NewClient(srv.URL, "merchant-1", "s3cret", "enc-key")
	result, err := c.ReconcileResult(context.Background(), "enc-ref-1")
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	if result.Status != StatusUnknown {
		t.Fatalf("expected StatusUnknown on auth failure, got %v", result.Status)
	}
}

func TestBuildRedirectForm(t *testing.T) {
	c := NewClient("https://pay.example.com", "merchant-1", "s3cret", "enc-key")

	form, err := c.BuildRedirectForm(RedirectParams{
		AccessToken: "tok-abc",
		Amount:      13.5,
		TrackID:     "track-42",
		Reference:   "order-1",
		ReturnURL:   "https://shop.example.com/payment-result",
	})
	if err != nil {
		t.Fatalf("BuildRedirectForm returned error: %v", err)
	}

	for _, want := range []string{
		`action="https://pay.example.com/payment"`,
		`name="amt" value="13.500"`,
		`name="trackId" value="track-42"`,
		`name="token" value="tok-abc"`,
		`name="tranportalKey" value="enc-key"`,
		`name="responseURL" value="https://shop.example.com/payment-result"`,
		`name="langid" value="en"`,
		`onload="document.forms[0].submit()"`,
	} {
		if !strings.Contains(form, want) {
			t.Fatalf("form missing %s\n%s", want, form)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{13.5, "13.500"},
		{100, "100.000"},
		{0.25, "0.250"},
	}
	for _, tc := range tests {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
