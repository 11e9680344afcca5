package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/coursehub/coursehub/internal/database"
	"github.com/coursehub/coursehub/internal/model"
)

type SubscriptionRepository struct {
	db     *database.Accessor
	logger *zap.Logger
}

func NewSubscriptionRepository(db *database.Accessor, logger *zap.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{db: db, logger: logger}
}

// Upsert records a captured payment. A repeated capture for the same
// user/course pair refreshes the payment fields and keeps the vote.
func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *model.Subscription) error {
	q := database.New(`
		INSERT INTO subscriptions (user_id, course_id, payment_date, payment_type, paid_amount, paid_currency, transaction_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, course_id) DO UPDATE
		SET payment_date = EXCLUDED.payment_date,
		    payment_type = EXCLUDED.payment_type,
		    paid_amount = EXCLUDED.paid_amount,
		    paid_currency = EXCLUDED.paid_currency,
		    transaction_id = EXCLUDED.transaction_id`,
		sub.UserID, sub.CourseID, sub.PaymentDate, sub.PaymentType,
		sub.Paid.Amount, string(sub.Paid.Currency), sub.TransactionID)

	if _, err := r.db.Exec(ctx, q); err != nil {
		r.logger.Error("Failed to record subscription",
			zap.Int64("user_id", sub.UserID),
			zap.Int64("course_id", sub.CourseID),
			zap.String("transaction_id", sub.TransactionID),
			zap.Error(err))
		return fmt.Errorf("record subscription: %w", err)
	}

	r.logger.Info("Subscription recorded",
		zap.Int64("user_id", sub.UserID),
		zap.Int64("course_id", sub.CourseID),
		zap.String("transaction_id", sub.TransactionID))
	return nil
}

// Get returns a subscription or apperror.ErrNotFound.
func (r *SubscriptionRepository) Get(ctx context.Context, userID, courseID int64) (*model.Subscription, error) {
	q := database.New(`
		SELECT user_id, course_id, payment_date, payment_type, paid_amount, paid_currency, transaction_id, vote
		FROM subscriptions
		WHERE user_id = ? AND course_id = ?`,
		userID, courseID)

	var sub model.Subscription
	var currency string
	err := r.db.QueryRow(ctx, q).Scan(
		&sub.UserID,
		&sub.CourseID,
		&sub.PaymentDate,
		&sub.PaymentType,
		&sub.Paid.Amount,
		&currency,
		&sub.TransactionID,
		&sub.Vote,
	)
	if err != nil {
		return nil, fmt.Errorf("get subscription %d/%d: %w", courseID, userID, err)
	}
	sub.Paid.Currency = model.Currency(currency)
	return &sub, nil
}

// UpdateVote stores a vote on the caller's own subscription. Zero affected
// rows means the subscription does not exist.
func (r *SubscriptionRepository) UpdateVote(ctx context.Context, userID, courseID int64, vote int) (int64, error) {
	q := database.New(
		"UPDATE subscriptions SET vote = ? WHERE user_id = ? AND course_id = ?",
		vote, userID, courseID)

	affected, err := r.db.Exec(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("update vote %d/%d: %w", courseID, userID, err)
	}
	return affected, nil
}

// IsSubscribed reports whether the user already paid for the course.
func (r *SubscriptionRepository) IsSubscribed(ctx context.Context, userID, courseID int64) (bool, error) {
	q := database.New(
		"SELECT COUNT(*) FROM subscriptions WHERE user_id = ? AND course_id = ?",
		userID, courseID)
	count, err := database.Scalar[int](ctx, r.db, q)
	if err != nil {
		return false, fmt.Errorf("is subscribed %d/%d: %w", courseID, userID, err)
	}
	return count > 0, nil
}
