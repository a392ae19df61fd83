package db

import (
	"context"

	"perilwatch/internal/types"
)

// PaymentRepository provides data access for the premium_payments table.
type PaymentRepository struct {
	db DBTX
}

// NewPaymentRepository creates a new PaymentRepository backed by the given
// database connection (pool or transaction).
func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create inserts a new premium payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *types.PremiumPayment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO premium_payments (
			id, policy_id, amount, payment_date, transaction_ref, status
		) VALUES (
			$1, $2, $3, COALESCE($4, NOW()), $5, $6
		)`,
		payment.ID,
		payment.PolicyID,
		payment.Amount,
		nilIfZeroTime(payment.PaymentDate),
		payment.TransactionRef,
		payment.Status,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to record premium payment", err)
	}
	return nil
}

// List returns all premium payments for the given policy, most recent first.
func (r *PaymentRepository) List(ctx context.Context, policyID string) ([]*types.PremiumPayment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, policy_id, amount, payment_date, transaction_ref, status
		 FROM premium_payments
		 WHERE policy_id = $1
		 ORDER BY payment_date DESC`,
		policyID,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list premium payments", err)
	}
	defer rows.Close()

	var payments []*types.PremiumPayment
	for rows.Next() {
		var p types.PremiumPayment
		if err := rows.Scan(&p.ID, &p.PolicyID, &p.Amount, &p.PaymentDate, &p.TransactionRef, &p.Status); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan payment row", err)
		}
		payments = append(payments, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "payment row iteration failed", err)
	}
	return payments, nil
}

// UpdateStatus transitions a premium payment to the given status. Used by the
// Stripe webhook handler to confirm or fail pending payments.
func (r *PaymentRepository) UpdateStatus(ctx context.Context, id string, status types.PaymentStatus) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE premium_payments SET status = $2 WHERE id = $1`,
		id, status,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update payment status", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeInternalDB, "premium payment not found", nil)
	}
	return nil
}

// Compile-time assertion.
var _ types.PaymentRepository = (*PaymentRepository)(nil)
