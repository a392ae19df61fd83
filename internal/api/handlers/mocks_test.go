package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"perilwatch/internal/core"
	"perilwatch/internal/types"
)

var (
	testLogger    = slog.New(slog.NewTextHandler(io.Discard, nil))
	testValidator = core.NewValidator()
	testNow       = time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
)

// fixedClock pins handler timestamps for deterministic assertions.
type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// serve mounts the registrar on a fresh router and executes the request.
func serve(t *testing.T, register func(chi.Router), req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	r := chi.NewRouter()
	register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeData[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var envelope struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Data
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

// --- Store fakes ---

type mockPolicyStore struct {
	mu       sync.Mutex
	policies map[string]*types.Policy
	created  []*types.Policy
	statuses map[string]types.PolicyStatus
	err      error
}

func newMockPolicyStore(policies ...*types.Policy) *mockPolicyStore {
	s := &mockPolicyStore{
		policies: map[string]*types.Policy{},
		statuses: map[string]types.PolicyStatus{},
	}
	for _, p := range policies {
		s.policies[p.ID] = p
	}
	return s
}

func (s *mockPolicyStore) Create(ctx context.Context, policy *types.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, policy)
	s.policies[policy.ID] = policy
	return nil
}

func (s *mockPolicyStore) GetByID(ctx context.Context, id string) (*types.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.policies[id]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundPolicy, "policy not found", nil)
	}
	return p, nil
}

func (s *mockPolicyStore) List(ctx context.Context, farmerID string) ([]*types.Policy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.Policy
	for _, p := range s.policies {
		if farmerID == "" || p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *mockPolicyStore) UpdateStatus(ctx context.Context, id string, status types.PolicyStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[id] = status
	return nil
}

type mockClaimStore struct {
	mu      sync.Mutex
	claims  map[string]*types.Claim
	created []*types.Claim
	err     error

	lastListPolicy string
	lastListStatus types.ClaimStatus
}

func newMockClaimStore(claims ...*types.Claim) *mockClaimStore {
	s := &mockClaimStore{claims: map[string]*types.Claim{}}
	for _, c := range claims {
		s.claims[c.ID] = c
	}
	return s
}

func (s *mockClaimStore) Create(ctx context.Context, claim *types.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, claim)
	s.claims[claim.ID] = claim
	return nil
}

func (s *mockClaimStore) GetByID(ctx context.Context, id string) (*types.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundClaim, "claim not found", nil)
	}
	return c, nil
}

func (s *mockClaimStore) List(ctx context.Context, policyID string, status types.ClaimStatus) ([]*types.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastListPolicy = policyID
	s.lastListStatus = status
	var out []*types.Claim
	for _, c := range s.claims {
		if (policyID == "" || c.PolicyID == policyID) && (status == "" || c.Status == status) {
			out = append(out, c)
		}
	}
	return out, nil
}

type mockPaymentStore struct {
	mu       sync.Mutex
	payments []*types.PremiumPayment
	statuses map[string]types.PaymentStatus
	err      error
}

func newMockPaymentStore(payments ...*types.PremiumPayment) *mockPaymentStore {
	return &mockPaymentStore{payments: payments, statuses: map[string]types.PaymentStatus{}}
}

func (s *mockPaymentStore) Create(ctx context.Context, payment *types.PremiumPayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.payments = append(s.payments, payment)
	return nil
}

func (s *mockPaymentStore) List(ctx context.Context, policyID string) ([]*types.PremiumPayment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*types.PremiumPayment
	for _, p := range s.payments {
		if p.PolicyID == policyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *mockPaymentStore) UpdateStatus(ctx context.Context, id string, status types.PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.statuses[id] = status
	return nil
}

// --- Collaborator fakes ---

type mockAnalyzer struct {
	analysis *types.WeatherAnalysis
	err      error

	lastStation  string
	lastDate     time.Time
	lastLookback int
}

func (m *mockAnalyzer) Analyze(ctx context.Context, stationID string, analysisDate time.Time, lookbackDays int) (*types.WeatherAnalysis, error) {
	m.lastStation = stationID
	m.lastDate = analysisDate
	m.lastLookback = lookbackDays
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

type mockStationSource struct {
	stations []types.Station
	err      error
}

func (m *mockStationSource) GetStations(ctx context.Context) ([]types.Station, error) {
	return m.stations, m.err
}

type mockObservationReader struct {
	observations map[string]*types.Observation
	errs         map[string]error
}

func (m *mockObservationReader) GetLatestObservation(ctx context.Context, stationID string) (*types.Observation, error) {
	if err, ok := m.errs[stationID]; ok {
		return nil, err
	}
	obs, ok := m.observations[stationID]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundStation, "station not found", nil)
	}
	return obs, nil
}

type mockQuoter struct {
	premium float64
	err     error
}

func (m *mockQuoter) MonthlyPremium(coverage types.CoverageType, cropType string, farmSizeHectares, coverageAmount float64) (float64, error) {
	return m.premium, m.err
}

type mockPaymentService struct {
	customerID string
	ensureErr  error
	chargeRef  string
	chargeErr  error

	ensureCalls int
	chargeCalls int
}

func (m *mockPaymentService) EnsureCustomer(ctx context.Context, farmerID, email string) (string, error) {
	m.ensureCalls++
	return m.customerID, m.ensureErr
}

func (m *mockPaymentService) ChargePremium(ctx context.Context, farmerID, policyID string, amountUSD float64) (string, error) {
	m.chargeCalls++
	if m.chargeErr != nil {
		return "", m.chargeErr
	}
	return m.chargeRef, nil
}

type mockVerifier struct {
	err error

	lastPayload   []byte
	lastSignature string
}

func (m *mockVerifier) Verify(payload []byte, header, secret string) error {
	m.lastPayload = payload
	m.lastSignature = header
	return m.err
}

// --- Fixtures ---

func activeFloodPolicy() *types.Policy {
	return &types.Policy{
		ID:             "pol_flood_1",
		FarmerID:       "farmer-1",
		FarmerName:     "Amina Okafor",
		FarmerEmail:    "amina@example.com",
		StationID:      "st-1",
		FarmSize:       50,
		CropType:       "corn",
		CoverageType:   types.CoverageFlood,
		CoverageAmount: 10000,
		PremiumAmount:  17.50,
		Deductible:     10,
		Thresholds: types.PolicyThresholds{
			Flood: types.FloodThresholds{Days: 3, PrecipitationThreshold: 20, CumulativeThreshold: 50},
		},
		StartDate: testNow.AddDate(0, -1, 0),
		EndDate:   testNow.AddDate(1, 0, 0),
		Status:    types.PolicyStatusActive,
	}
}
