package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/tastehub/models"
	"github.com/yeremiapane/tastehub/utils"
)

// PaymentAttemptRepository tracks gateway orders from creation until they
// settle an order, fail verification or expire.
type PaymentAttemptRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPaymentAttemptRepository(db *gorm.DB) *PaymentAttemptRepository {
	return &PaymentAttemptRepository{db: db, now: time.Now}
}

func (r *PaymentAttemptRepository) WithClock(now func() time.Time) *PaymentAttemptRepository {
	r.now = now
	return r
}

func (r *PaymentAttemptRepository) Create(ctx context.Context, attempt *models.PaymentAttempt) error {
	now := r.now()
	attempt.Status = models.AttemptCreated
	attempt.CreatedAt = now
	attempt.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return &utils.RepositoryError{Op: "create payment attempt", Err: err}
	}
	return nil
}

func (r *PaymentAttemptRepository) Get(ctx context.Context, id string) (*models.PaymentAttempt, error) {
	var attempt models.PaymentAttempt
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("payment attempt %s: %w", id, utils.ErrNotFound)
	}
	if err != nil {
		return nil, &utils.RepositoryError{Op: "get payment attempt", Err: err}
	}
	return &attempt, nil
}

// MarkVerified records a matching signature. A created or expired attempt,
// or one already verified for the same payment, is affected. Expiry only
// means no callback arrived in time; a valid signature proves the payment.
func (r *PaymentAttemptRepository) MarkVerified(ctx context.Context, id, gatewayPaymentID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("id = ?", id).
		Where("(status IN ? OR (status = ? AND gateway_payment_id = ?))",
			[]models.AttemptStatus{models.AttemptCreated, models.AttemptExpired}, models.AttemptVerified, gatewayPaymentID).
		Updates(map[string]interface{}{
			"status":             models.AttemptVerified,
			"gateway_payment_id": gatewayPaymentID,
			"updated_at":         r.now(),
		})
	if res.Error != nil {
		return false, &utils.RepositoryError{Op: "verify payment attempt", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

// MarkFailed ends an attempt whose signature did not match; it cannot be reused.
func (r *PaymentAttemptRepository) MarkFailed(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("id = ? AND status IN ?", id, []models.AttemptStatus{models.AttemptCreated, models.AttemptVerified}).
		Updates(map[string]interface{}{
			"status":     models.AttemptFailed,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return false, &utils.RepositoryError{Op: "fail payment attempt", Err: res.Error}
	}
	return res.RowsAffected > 0, nil
}

// ExpireCreatedBefore expires attempts that never got a verified callback.
func (r *PaymentAttemptRepository) ExpireCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentAttempt{}).
		Where("status = ? AND created_at < ?", models.AttemptCreated, cutoff).
		Updates(map[string]interface{}{
			"status":     models.AttemptExpired,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return 0, &utils.RepositoryError{Op: "expire payment attempts", Err: res.Error}
	}
	return res.RowsAffected, nil
}
