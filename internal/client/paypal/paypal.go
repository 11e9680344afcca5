package paypal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/apperror"
	"github.com/coursehub/coursehub/internal/config"
	"github.com/coursehub/coursehub/internal/model"
)

// paymentType tags subscriptions created through this gateway.
const paymentType = "Paypal"

// Order describes a checkout to be approved by the buyer.
type Order struct {
	CourseID    int64
	UserID      int64
	Description string
	Price       model.Money
	ReturnURL   string
	CancelURL   string
}

// Capture is the outcome of a completed payment.
type Capture struct {
	CourseID      int64
	UserID        int64
	Paid          model.Money
	TransactionID string
	PaymentDate   time.Time
	PaymentType   string
}

// Client talks to the PayPal Orders v2 API. Every provider failure wraps
// apperror.ErrPaymentGateway.
type Client struct {
	http   *resty.Client
	cfg    config.PaypalConfig
	logger *zap.Logger
}

func New(cfg config.PaypalConfig, logger *zap.Logger) *Client {
	return &Client{
		http:   resty.New().SetBaseURL(cfg.BaseURL),
		cfg:    cfg,
		logger: logger,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

type link struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type orderResponse struct {
	ID            string `json:"id"`
	Links         []link `json:"links"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				ID         string `json:"id"`
				Amount     amount `json:"amount"`
				CustomID   string `json:"custom_id"`
				CreateTime string `json:"create_time"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	var token tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret).
		SetFormData(map[string]string{"grant_type": "client_credentials"}).
		SetResult(&token).
		Post("/v1/oauth2/token")
	if err != nil {
		return "", fmt.Errorf("%w: token request: %w", apperror.ErrPaymentGateway, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: token request: status %d", apperror.ErrPaymentGateway, resp.StatusCode())
	}
	return token.AccessToken, nil
}

// CreateOrderURL creates a CAPTURE order and returns the buyer approval
// URL. The course/user pair travels in the purchase unit custom id so the
// capture can be correlated back.
func (c *Client) CreateOrderURL(ctx context.Context, order Order) (string, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"intent": "CAPTURE",
		"application_context": map[string]any{
			"return_url":          order.ReturnURL,
			"cancel_url":          order.CancelURL,
			"brand_name":          c.cfg.BrandName,
			"shipping_preference": "NO_SHIPPING",
		},
		"purchase_units": []map[string]any{{
			"custom_id":   fmt.Sprintf("%d/%d", order.CourseID, order.UserID),
			"description": order.Description,
			"amount": amount{
				CurrencyCode: string(order.Price.Currency),
				Value:        strconv.FormatFloat(order.Price.Amount, 'f', 2, 64),
			},
		}},
	}

	var result orderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Prefer", "return=representation").
		// Idempotency key: a retried create must not open a second order.
		SetHeader("PayPal-Request-Id", uuid.NewString()).
		SetBody(body).
		SetResult(&result).
		Post("/v2/checkout/orders")
	if err != nil {
		return "", fmt.Errorf("%w: create order: %w", apperror.ErrPaymentGateway, err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: create order: status %d: %s", apperror.ErrPaymentGateway, resp.StatusCode(), resp.String())
	}

	for _, l := range result.Links {
		if l.Rel == "approve" {
			c.logger.Info("Payment order created",
				zap.String("order_id", result.ID),
				zap.Int64("course_id", order.CourseID),
				zap.Int64("user_id", order.UserID))
			return l.Href, nil
		}
	}
	return "", fmt.Errorf("%w: create order: no approval link in response", apperror.ErrPaymentGateway)
}

// CaptureOrder captures an approved order by its token and decodes the
// correlation custom id back into course and user.
func (c *Client) CaptureOrder(ctx context.Context, orderToken string) (*Capture, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	var result orderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Prefer", "return=representation").
		SetResult(&result).
		Post("/v2/checkout/orders/" + orderToken + "/capture")
	if err != nil {
		return nil, fmt.Errorf("%w: capture order: %w", apperror.ErrPaymentGateway, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: capture order: status %d: %s", apperror.ErrPaymentGateway, resp.StatusCode(), resp.String())
	}

	if len(result.PurchaseUnits) == 0 || len(result.PurchaseUnits[0].Payments.Captures) == 0 {
		return nil, fmt.Errorf("%w: capture order: no capture in response", apperror.ErrPaymentGateway)
	}
	captured := result.PurchaseUnits[0].Payments.Captures[0]

	courseID, userID, err := parseCustomID(captured.CustomID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrPaymentGateway, err)
	}

	paidAmount, err := strconv.ParseFloat(captured.Amount.Value, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: capture order: bad amount %q", apperror.ErrPaymentGateway, captured.Amount.Value)
	}

	paymentDate, err := time.Parse(time.RFC3339, captured.CreateTime)
	if err != nil {
		paymentDate = time.Now().UTC()
	}

	c.logger.Info("Payment captured",
		zap.String("transaction_id", captured.ID),
		zap.Int64("course_id", courseID),
		zap.Int64("user_id", userID))

	return &Capture{
		CourseID:      courseID,
		UserID:        userID,
		Paid:          model.Money{Currency: model.Currency(captured.Amount.CurrencyCode), Amount: paidAmount},
		TransactionID: captured.ID,
		PaymentDate:   paymentDate,
		PaymentType:   paymentType,
	}, nil
}

// parseCustomID splits the "courseID/userID" correlation field.
func parseCustomID(customID string) (courseID, userID int64, err error) {
	left, right, ok := strings.Cut(customID, "/")
	if !ok {
		return 0, 0, fmt.Errorf("capture order: malformed custom id %q", customID)
	}
	courseID, err = strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("capture order: malformed custom id %q", customID)
	}
	userID, err = strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("capture order: malformed custom id %q", customID)
	}
	return courseID, userID, nil
}
