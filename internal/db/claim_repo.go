package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"perilwatch/internal/types"
)

// ClaimRepository provides data access for the claims table. Evidence blobs
// are stored compressed (see evidence.go); the repository stores and returns
// them as-is.
type ClaimRepository struct {
	db DBTX
}

// NewClaimRepository creates a new ClaimRepository backed by the given
// database connection (pool or transaction).
func NewClaimRepository(db DBTX) *ClaimRepository {
	return &ClaimRepository{db: db}
}

const claimColumns = `c.id, c.policy_id, c.alert_type, c.claim_amount,
	c.claim_date, c.status, c.evidence, c.transaction_ref, c.rejection_reason`

func scanClaim(row pgx.Row) (*types.Claim, error) {
	var c types.Claim
	var transactionRef, rejectionReason *string
	err := row.Scan(
		&c.ID,
		&c.PolicyID,
		&c.AlertType,
		&c.ClaimAmount,
		&c.ClaimDate,
		&c.Status,
		&c.Evidence,
		&transactionRef,
		&rejectionReason,
	)
	if err != nil {
		return nil, err
	}
	if transactionRef != nil {
		c.TransactionRef = *transactionRef
	}
	if rejectionReason != nil {
		c.RejectionReason = *rejectionReason
	}
	return &c, nil
}

// Create inserts a new claim record in pending status.
func (r *ClaimRepository) Create(ctx context.Context, claim *types.Claim) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO claims (
			id, policy_id, alert_type, claim_amount,
			claim_date, status, evidence, transaction_ref, rejection_reason
		) VALUES (
			$1, $2, $3, $4,
			COALESCE($5, NOW()), $6, $7, $8, $9
		)`,
		claim.ID,
		claim.PolicyID,
		claim.AlertType,
		claim.ClaimAmount,
		nilIfZeroTime(claim.ClaimDate),
		claim.Status,
		claim.Evidence,
		nilIfEmpty(claim.TransactionRef),
		nilIfEmpty(claim.RejectionReason),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create claim", err)
	}
	return nil
}

// GetByID retrieves a single claim by ID.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*types.Claim, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+claimColumns+` FROM claims c WHERE c.id = $1`,
		id,
	)

	claim, err := scanClaim(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundClaim, "claim not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve claim", err)
	}
	return claim, nil
}

// List returns claims filtered by policy and/or status, most recent first.
// Empty filter values are ignored.
func (r *ClaimRepository) List(ctx context.Context, policyID string, status types.ClaimStatus) ([]*types.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims c WHERE 1=1`
	args := []any{}
	if policyID != "" {
		args = append(args, policyID)
		query += ` AND c.policy_id = $1`
	}
	if status != "" {
		args = append(args, status)
		if len(args) == 1 {
			query += ` AND c.status = $1`
		} else {
			query += ` AND c.status = $2`
		}
	}
	query += ` ORDER BY c.claim_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list claims", err)
	}
	defer rows.Close()

	var claims []*types.Claim
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan claim row", err)
		}
		claims = append(claims, claim)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "claim row iteration failed", err)
	}
	return claims, nil
}

// UpdateStatus transitions a claim to the given status, recording the payout
// transaction reference (approved/paid) or rejection reason. Empty strings
// leave the existing values untouched.
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id string, status types.ClaimStatus, transactionRef, reason string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE claims
		 SET status = $2,
		     transaction_ref = COALESCE($3, transaction_ref),
		     rejection_reason = COALESCE($4, rejection_reason)
		 WHERE id = $1`,
		id, status, nilIfEmpty(transactionRef), nilIfEmpty(reason),
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update claim status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundClaim, "claim not found", nil)
	}
	return nil
}

// Compile-time assertion.
var _ types.ClaimRepository = (*ClaimRepository)(nil)
