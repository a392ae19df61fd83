package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"perilwatch/internal/types"
)

// PolicyRepository provides data access for the policies table. Per-peril
// contractual thresholds are stored as a JSONB document since their shape
// varies by coverage type.
type PolicyRepository struct {
	db DBTX
}

// NewPolicyRepository creates a new PolicyRepository backed by the given
// database connection (pool or transaction).
func NewPolicyRepository(db DBTX) *PolicyRepository {
	return &PolicyRepository{db: db}
}

const policyColumns = `p.id, p.farmer_id, p.farmer_name, p.farmer_email,
	p.station_id, p.station_name, p.location_lat, p.location_lon,
	p.farm_size, p.crop_type, p.coverage_type, p.coverage_amount,
	p.premium_amount, p.deductible, p.thresholds,
	p.start_date, p.end_date, p.status, p.created_at`

// scanPolicy scans a single policy row. The columns must match the order
// defined in policyColumns.
func scanPolicy(row pgx.Row) (*types.Policy, error) {
	var p types.Policy
	err := row.Scan(
		&p.ID,
		&p.FarmerID,
		&p.FarmerName,
		&p.FarmerEmail,
		&p.StationID,
		&p.StationName,
		&p.Location.Lat,
		&p.Location.Lon,
		&p.FarmSize,
		&p.CropType,
		&p.CoverageType,
		&p.CoverageAmount,
		&p.PremiumAmount,
		&p.Deductible,
		&p.Thresholds,
		&p.StartDate,
		&p.EndDate,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new policy record. The caller must set the ID (prefixed
// UUID, e.g. "pol_...") and required fields before calling.
func (r *PolicyRepository) Create(ctx context.Context, policy *types.Policy) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO policies (
			id, farmer_id, farmer_name, farmer_email,
			station_id, station_name, location_lat, location_lon,
			farm_size, crop_type, coverage_type, coverage_amount,
			premium_amount, deductible, thresholds,
			start_date, end_date, status, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, COALESCE($19, NOW())
		)`,
		policy.ID,
		policy.FarmerID,
		policy.FarmerName,
		policy.FarmerEmail,
		policy.StationID,
		policy.StationName,
		policy.Location.Lat,
		policy.Location.Lon,
		policy.FarmSize,
		policy.CropType,
		policy.CoverageType,
		policy.CoverageAmount,
		policy.PremiumAmount,
		policy.Deductible,
		policy.Thresholds,
		policy.StartDate,
		policy.EndDate,
		policy.Status,
		nilIfZeroTime(policy.CreatedAt),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create policy", err)
	}
	return nil
}

// GetByID retrieves a single policy by ID.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*types.Policy, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+policyColumns+` FROM policies p WHERE p.id = $1`,
		id,
	)

	policy, err := scanPolicy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundPolicy, "policy not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve policy", err)
	}
	return policy, nil
}

// List returns all policies for the given farmer, most recent first.
// An empty farmerID lists every policy.
func (r *PolicyRepository) List(ctx context.Context, farmerID string) ([]*types.Policy, error) {
	query := `SELECT ` + policyColumns + ` FROM policies p`
	args := []any{}
	if farmerID != "" {
		query += ` WHERE p.farmer_id = $1`
		args = append(args, farmerID)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list policies", err)
	}
	defer rows.Close()

	return collectPolicies(rows)
}

// ListActiveByStation returns the active policies bound to a station. Used by
// the automation pipeline to decide which contracts a detected peril touches.
func (r *PolicyRepository) ListActiveByStation(ctx context.Context, stationID string) ([]*types.Policy, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+policyColumns+`
		 FROM policies p
		 WHERE p.station_id = $1
		   AND p.status = $2
		   AND p.start_date <= NOW()
		   AND p.end_date >= NOW()
		 ORDER BY p.created_at`,
		stationID, types.PolicyStatusActive,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list station policies", err)
	}
	defer rows.Close()

	return collectPolicies(rows)
}

// UpdateStatus transitions a policy to the given lifecycle status.
func (r *PolicyRepository) UpdateStatus(ctx context.Context, id string, status types.PolicyStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE policies SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update policy status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundPolicy, "policy not found", nil)
	}
	return nil
}

func collectPolicies(rows pgx.Rows) ([]*types.Policy, error) {
	var policies []*types.Policy
	for rows.Next() {
		policy, err := scanPolicy(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan policy row", err)
		}
		policies = append(policies, policy)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "policy row iteration failed", err)
	}
	return policies, nil
}

// Compile-time assertion.
var _ types.PolicyRepository = (*PolicyRepository)(nil)
