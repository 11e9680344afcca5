package paypal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/apperror"
	"github.com/coursehub/coursehub/internal/config"
	"github.com/coursehub/coursehub/internal/model"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(config.PaypalConfig{
		BaseURL:      server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		BrandName:    "CourseHub",
	}, zap.NewNop())
	return server, client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestCreateOrderURLReturnsApprovalLink(t *testing.T) {
	var orderBody map[string]any
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			user, pass, ok := r.BasicAuth()
			require.True(t, ok)
			assert.Equal(t, "client-id", user)
			assert.Equal(t, "client-secret", pass)
			writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "tok"})
		case "/v2/checkout/orders":
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&orderBody))
			writeJSON(t, w, http.StatusCreated, map[string]any{
				"id": "ORDER-1",
				"links": []map[string]string{
					{"href": "https://paypal.test/self", "rel": "self"},
					{"href": "https://paypal.test/approve", "rel": "approve"},
				},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	url, err := client.CreateOrderURL(context.Background(), Order{
		CourseID:    12,
		UserID:      7,
		Description: "Go Basics",
		Price:       model.Money{Currency: model.CurrencyEUR, Amount: 14.5},
		ReturnURL:   "https://app/return",
		CancelURL:   "https://app/cancel",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://paypal.test/approve", url)

	units := orderBody["purchase_units"].([]any)
	unit := units[0].(map[string]any)
	assert.Equal(t, "12/7", unit["custom_id"])
	amount := unit["amount"].(map[string]any)
	assert.Equal(t, "EUR", amount["currency_code"])
	assert.Equal(t, "14.50", amount["value"])
}

func TestCreateOrderURLWrapsProviderError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "tok"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.CreateOrderURL(context.Background(), Order{CourseID: 1, UserID: 2})
	assert.ErrorIs(t, err, apperror.ErrPaymentGateway)
}

func TestCreateOrderURLWithoutApprovalLink(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "tok"})
			return
		}
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": "ORDER-1", "links": []map[string]string{}})
	})

	_, err := client.CreateOrderURL(context.Background(), Order{CourseID: 1, UserID: 2})
	assert.ErrorIs(t, err, apperror.ErrPaymentGateway)
}

func TestCaptureOrderDecodesCustomID(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/oauth2/token":
			writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "tok"})
		case strings.HasSuffix(r.URL.Path, "/capture"):
			assert.Equal(t, "/v2/checkout/orders/ORDER-TOKEN/capture", r.URL.Path)
			writeJSON(t, w, http.StatusCreated, map[string]any{
				"id": "ORDER-1",
				"purchase_units": []map[string]any{{
					"payments": map[string]any{
						"captures": []map[string]any{{
							"id":          "TX-99",
							"custom_id":   "12/7",
							"create_time": "2026-08-30T10:00:00Z",
							"amount":      map[string]string{"currency_code": "EUR", "value": "14.50"},
						}},
					},
				}},
			})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	capture, err := client.CaptureOrder(context.Background(), "ORDER-TOKEN")
	require.NoError(t, err)

	assert.Equal(t, int64(12), capture.CourseID)
	assert.Equal(t, int64(7), capture.UserID)
	assert.Equal(t, "TX-99", capture.TransactionID)
	assert.Equal(t, model.CurrencyEUR, capture.Paid.Currency)
	assert.InDelta(t, 14.5, capture.Paid.Amount, 0.001)
	assert.Equal(t, "Paypal", capture.PaymentType)
}

func TestCaptureOrderWithoutCapture(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/oauth2/token" {
			writeJSON(t, w, http.StatusOK, map[string]string{"access_token": "tok"})
			return
		}
		writeJSON(t, w, http.StatusCreated, map[string]any{"id": "ORDER-1"})
	})

	_, err := client.CaptureOrder(context.Background(), "ORDER-TOKEN")
	assert.ErrorIs(t, err, apperror.ErrPaymentGateway)
}

func TestParseCustomID(t *testing.T) {
	courseID, userID, err := parseCustomID("12/7")
	require.NoError(t, err)
	assert.Equal(t, int64(12), courseID)
	assert.Equal(t, int64(7), userID)

	_, _, err = parseCustomID("garbage")
	assert.Error(t, err)

	_, _, err = parseCustomID("12/abc")
	assert.Error(t, err)
}
