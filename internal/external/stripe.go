package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"perilwatch/internal/types"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// stripeAPIBase is the default Stripe API base URL.
// Overridable in tests via StripeClientConfig.BaseURL.
const stripeAPIBase = "https://api.stripe.com"

// StripeClientConfig holds the configuration for creating a StripeClient.
type StripeClientConfig struct {
	SecretKey types.SecretString
	BaseURL   string // Override for testing; defaults to stripeAPIBase
	Logger    *slog.Logger
}

// StripeClient implements PaymentService by making direct HTTP calls to the
// Stripe REST API through BaseClient. This routes all requests through the
// platform's resilience infrastructure (circuit breaker, retries, error
// mapping) and makes testing with httptest straightforward.
type StripeClient struct {
	base      *BaseClient
	secretKey types.SecretString
	baseURL   string
	logger    *slog.Logger
}

// NewStripeClient creates a new StripeClient.
func NewStripeClient(httpClient *http.Client, cfg StripeClientConfig) *StripeClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := NewBaseClient(
		httpClient,
		"stripe",
		RetryPolicy{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		"PerilWatch/1.0",
	)

	return &StripeClient{
		base:      base,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// NewStripeClientWithBase creates a StripeClient with a pre-configured BaseClient.
// This is useful for testing when you want to control the BaseClient configuration.
func NewStripeClientWithBase(base *BaseClient, cfg StripeClientConfig) *StripeClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = stripeAPIBase
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &StripeClient{
		base:      base,
		secretKey: cfg.SecretKey,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		logger:    logger,
	}
}

// EnsureCustomer retrieves or creates a Stripe customer for the given farmer.
// Uses search-first logic to prevent duplicates:
//  1. Query Stripe Search API for metadata['farmer_id'] match
//  2. If found, return the existing customer ID
//  3. If not found, create a new customer with farmer_id metadata
func (s *StripeClient) EnsureCustomer(ctx context.Context, farmerID string, email string) (string, error) {
	// Step 1: Search for an existing customer by farmer_id metadata.
	searchQuery := fmt.Sprintf("metadata['farmer_id']:'%s'", farmerID)
	params := url.Values{}
	params.Set("query", searchQuery)

	searchResp, err := s.doGet(ctx, "/v1/customers/search", params)
	if err != nil {
		return "", s.wrapStripeError("EnsureCustomer.search", err)
	}
	defer searchResp.Body.Close()

	if searchResp.StatusCode != http.StatusOK {
		return "", s.handleErrorResponse(searchResp, "EnsureCustomer.search")
	}

	var searchResult stripeSearchResult
	if err := json.NewDecoder(searchResp.Body).Decode(&searchResult); err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe customer search response",
			err,
		)
	}

	// Step 2: Reuse the existing customer if there is one.
	if len(searchResult.Data) > 0 {
		return searchResult.Data[0].ID, nil
	}

	// Step 3: Create a new customer.
	createParams := url.Values{}
	createParams.Set("email", email)
	createParams.Set("metadata[farmer_id]", farmerID)

	createResp, err := s.doPost(ctx, "/v1/customers", createParams)
	if err != nil {
		return "", s.wrapStripeError("EnsureCustomer.create", err)
	}
	defer createResp.Body.Close()

	if createResp.StatusCode != http.StatusOK {
		return "", s.handleErrorResponse(createResp, "EnsureCustomer.create")
	}

	var customer stripeCustomer
	if err := json.NewDecoder(createResp.Body).Decode(&customer); err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe customer creation response",
			err,
		)
	}

	return customer.ID, nil
}

// ChargePremium collects one premium installment off-session from the
// farmer's saved default payment method. It creates and confirms a
// PaymentIntent in a single call and returns the intent ID as the
// transaction reference.
func (s *StripeClient) ChargePremium(ctx context.Context, farmerID, policyID string, amountUSD float64) (string, error) {
	if amountUSD <= 0 {
		return "", types.NewAppErrorWithDetails(
			types.ErrCodeValidationInvalidAmount,
			"premium amount must be positive",
			nil,
			map[string]any{"amount": amountUSD, "policy_id": policyID},
		)
	}

	customerID, err := s.customerIDForFarmer(ctx, farmerID)
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("amount", fmt.Sprintf("%d", usdToCents(amountUSD)))
	params.Set("currency", "usd")
	params.Set("customer", customerID)
	params.Set("confirm", "true")
	params.Set("off_session", "true")
	params.Set("metadata[farmer_id]", farmerID)
	params.Set("metadata[policy_id]", policyID)

	resp, err := s.doPost(ctx, "/v1/payment_intents", params)
	if err != nil {
		return "", s.wrapStripeError("ChargePremium", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", s.handleErrorResponse(resp, "ChargePremium")
	}

	var intent stripePaymentIntent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe payment intent response",
			err,
		)
	}

	if intent.Status != "succeeded" {
		return "", types.NewAppErrorWithDetails(
			types.ErrCodePaymentDeclined,
			fmt.Sprintf("premium payment did not complete (status %s)", intent.Status),
			nil,
			map[string]any{
				"policy_id":      policyID,
				"payment_intent": intent.ID,
				"status":         intent.Status,
			},
		)
	}

	s.logger.InfoContext(ctx, "premium collected",
		"policy_id", policyID,
		"payment_intent", intent.ID,
		"amount_usd", amountUSD,
	)

	return intent.ID, nil
}

// customerIDForFarmer looks up the farmer's Stripe customer by metadata. A
// farmer without a customer cannot be charged off-session.
func (s *StripeClient) customerIDForFarmer(ctx context.Context, farmerID string) (string, error) {
	searchQuery := fmt.Sprintf("metadata['farmer_id']:'%s'", farmerID)
	params := url.Values{}
	params.Set("query", searchQuery)

	resp, err := s.doGet(ctx, "/v1/customers/search", params)
	if err != nil {
		return "", s.wrapStripeError("customerIDForFarmer", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", s.handleErrorResponse(resp, "customerIDForFarmer")
	}

	var searchResult stripeSearchResult
	if err := json.NewDecoder(resp.Body).Decode(&searchResult); err != nil {
		return "", types.NewAppError(
			types.ErrCodeInternalUnexpected,
			"failed to decode Stripe customer search response",
			err,
		)
	}

	if len(searchResult.Data) == 0 {
		return "", types.NewAppErrorWithDetails(
			types.ErrCodePaymentDeclined,
			"farmer has no Stripe customer; call EnsureCustomer first",
			nil,
			map[string]any{"farmer_id": farmerID},
		)
	}

	return searchResult.Data[0].ID, nil
}

// usdToCents converts a USD amount to integer cents, rounding half away from
// zero. Stripe amounts are always integral minor units.
func usdToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// ---------------------------------------------------------------------------
// HTTP Helpers
// ---------------------------------------------------------------------------

// doGet performs an authenticated GET request to the Stripe API.
func (s *StripeClient) doGet(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := s.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	s.setAuthHeaders(req)

	return s.base.Do(req)
}

// doPost performs an authenticated POST request to the Stripe API with form-encoded body.
func (s *StripeClient) doPost(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	reqURL := s.baseURL + path
	body := params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.setAuthHeaders(req)

	return s.base.Do(req)
}

// setAuthHeaders sets the Stripe API authentication and content headers.
func (s *StripeClient) setAuthHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+s.secretKey.Unmask())
	req.Header.Set("Stripe-Version", stripe.APIVersion)
}

// ---------------------------------------------------------------------------
// Error Handling
// ---------------------------------------------------------------------------

// stripeErrorResponse represents the JSON error body returned by the Stripe API.
type stripeErrorResponse struct {
	Error stripeErrorBody `json:"error"`
}

type stripeErrorBody struct {
	Type        string `json:"type"`
	Code        string `json:"code"`
	DeclineCode string `json:"decline_code"`
	Message     string `json:"message"`
	Param       string `json:"param"`
}

// handleErrorResponse reads a Stripe error response and maps it to a types.AppError.
func (s *StripeClient) handleErrorResponse(resp *http.Response, operation string) error {
	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: Stripe returned status %d and response body was unreadable", operation, resp.StatusCode),
			readErr,
		)
	}

	var stripeErr stripeErrorResponse
	if jsonErr := json.Unmarshal(body, &stripeErr); jsonErr != nil {
		return types.NewAppError(
			types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: Stripe returned status %d with non-JSON body", operation, resp.StatusCode),
			jsonErr,
		)
	}

	return s.mapStripeError(operation, resp.StatusCode, &stripeErr.Error)
}

// mapStripeError translates a Stripe error into a types.AppError.
func (s *StripeClient) mapStripeError(operation string, statusCode int, stripeErr *stripeErrorBody) error {
	// Map card_declined to ErrCodePaymentDeclined.
	if stripeErr.Code == "card_declined" || stripeErr.DeclineCode != "" {
		return types.NewAppErrorWithDetails(
			types.ErrCodePaymentDeclined,
			fmt.Sprintf("%s: payment declined: %s", operation, stripeErr.Message),
			nil,
			map[string]any{
				"decline_code": stripeErr.DeclineCode,
				"stripe_code":  stripeErr.Code,
			},
		)
	}

	// Map based on HTTP status code.
	switch {
	case statusCode == http.StatusTooManyRequests:
		return types.NewAppError(
			types.ErrCodeUpstreamRateLimited,
			fmt.Sprintf("%s: Stripe rate limit exceeded", operation),
			nil,
		)
	case statusCode >= 500:
		return types.NewAppError(
			types.ErrCodeUpstreamUnavailable,
			fmt.Sprintf("%s: Stripe server error: %s", operation, stripeErr.Message),
			nil,
		)
	default:
		return types.NewAppError(
			types.ErrCodeUpstreamStripe,
			fmt.Sprintf("%s: Stripe error (%d): %s", operation, statusCode, stripeErr.Message),
			nil,
		)
	}
}

// wrapStripeError wraps a BaseClient transport error with context.
func (s *StripeClient) wrapStripeError(operation string, err error) error {
	// If it's already an AppError from BaseClient (circuit breaker, retries
	// exhausted), return it as-is since it already has the right error code.
	if _, ok := err.(*types.AppError); ok {
		return err
	}
	return types.NewAppError(
		types.ErrCodeUpstreamStripe,
		fmt.Sprintf("%s: Stripe request failed: %v", operation, err),
		err,
	)
}

// ---------------------------------------------------------------------------
// Stripe Response Types (for JSON deserialization)
// ---------------------------------------------------------------------------

type stripeCustomer struct {
	ID       string            `json:"id"`
	Email    string            `json:"email"`
	Metadata map[string]string `json:"metadata"`
}

type stripeSearchResult struct {
	Data    []stripeCustomer `json:"data"`
	HasMore bool             `json:"has_more"`
}

type stripePaymentIntent struct {
	ID       string            `json:"id"`
	Status   string            `json:"status"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
}

// ---------------------------------------------------------------------------
// Webhook Verification
// ---------------------------------------------------------------------------

// StripeVerifier implements WebhookVerifier using stripe-go's webhook
// signature verification. This provides HMAC-SHA256 signature checking
// with timestamp tolerance.
type StripeVerifier struct{}

// Verify validates a Stripe webhook payload against the signature header
// and signing secret. Uses stripe-go's webhook helper which checks both
// the HMAC signature and the timestamp tolerance.
func (v *StripeVerifier) Verify(payload []byte, header string, secret string) error {
	return webhook.ValidatePayload(payload, header, secret)
}

// Compile-time assertions.
var (
	_ PaymentService  = (*StripeClient)(nil)
	_ WebhookVerifier = (*StripeVerifier)(nil)
)
