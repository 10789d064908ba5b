package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/config"
	"github.com/gigpay/ledger-service/internal/model"
	"github.com/gigpay/ledger-service/internal/repository"
)

type PaymentStore interface {
	Pay(ctx context.Context, jobID, payerID uuid.UUID, paymentDate time.Time) (*repository.PaymentReceipt, error)
}

type BalanceStore interface {
	Deposit(ctx context.Context, profileID uuid.UUID, amount, ratio decimal.Decimal) (decimal.Decimal, error)
}

type PaymentService struct {
	jobs          PaymentStore
	profiles      BalanceStore
	depositRatio  decimal.Decimal
	retryAttempts int
	log           zerolog.Logger
}

type PaymentResult struct {
	JobID       uuid.UUID       `json:"jobId"`
	Price       decimal.Decimal `json:"price"`
	Balance     decimal.Decimal `json:"balance"`
	PaymentDate time.Time       `json:"paymentDate"`
}

// DepositResult reports either the credited balance or, when the amount
// exceeds the ceiling, the allowable amount. Rejection is an outcome here,
// not an error.
type DepositResult struct {
	Credited  bool            `json:"credited"`
	Balance   decimal.Decimal `json:"balance"`
	Allowable decimal.Decimal `json:"allowable"`
}

func NewPaymentService(jobs PaymentStore, profiles BalanceStore, cfg *config.Config, log zerolog.Logger) *PaymentService {
	return &PaymentService{
		jobs:          jobs,
		profiles:      profiles,
		depositRatio:  cfg.Ledger.DepositRatio,
		retryAttempts: cfg.Ledger.PayRetryAttempts,
		log:           log,
	}
}

// Pay moves the job price from the principal's balance to the contractor's
// and marks the job paid. A job that is absent, already paid, on a
// terminated contract, or not payable by this principal all come back as
// ErrNotFound. Serialization conflicts are retried a bounded number of
// times; each retry re-runs the full lookup, so a payment that committed
// meanwhile is seen as already paid rather than applied twice.
func (s *PaymentService) Pay(ctx context.Context, jobID uuid.UUID, principal model.Principal) (*PaymentResult, error) {
	if jobID == uuid.Nil {
		return nil, ErrNotFound
	}

	var lastErr error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		receipt, err := s.jobs.Pay(ctx, jobID, principal.ProfileID, time.Now().UTC())
		switch {
		case err == nil:
			return &PaymentResult{
				JobID:       receipt.JobID,
				Price:       receipt.Price,
				Balance:     receipt.ClientBalance,
				PaymentDate: receipt.PaymentDate,
			}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrInsufficientBalance):
			return nil, ErrInsufficientBalance
		case isSerializationFailure(err):
			lastErr = err
			s.log.Warn().Err(err).Str("job_id", jobID.String()).Int("attempt", attempt).Msg("payment conflicted, retrying")
			if waitErr := waitBeforeRetry(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
		default:
			return nil, err
		}
	}

	s.log.Error().Err(lastErr).Str("job_id", jobID.String()).Msg("payment retry budget exhausted")
	return nil, ErrConflict
}

// Deposit credits the principal's own balance, bounded by the deposit
// ceiling. Depositing into another profile is denied outright.
func (s *PaymentService) Deposit(ctx context.Context, principal model.Principal, targetID uuid.UUID, amount decimal.Decimal) (*DepositResult, error) {
	if principal.ProfileID != targetID {
		return nil, ErrPermissionDenied
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidInput
	}

	var lastErr error
	for attempt := 1; attempt <= s.retryAttempts; attempt++ {
		balance, err := s.profiles.Deposit(ctx, targetID, amount, s.depositRatio)
		var limitErr *repository.DepositLimitError
		switch {
		case err == nil:
			return &DepositResult{Credited: true, Balance: balance}, nil
		case errors.As(err, &limitErr):
			return &DepositResult{Credited: false, Allowable: limitErr.Allowable}, nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		case isSerializationFailure(err):
			lastErr = err
			s.log.Warn().Err(err).Str("profile_id", targetID.String()).Int("attempt", attempt).Msg("deposit conflicted, retrying")
			if waitErr := waitBeforeRetry(ctx, attempt); waitErr != nil {
				return nil, waitErr
			}
		default:
			return nil, err
		}
	}

	s.log.Error().Err(lastErr).Str("profile_id", targetID.String()).Msg("deposit retry budget exhausted")
	return nil, ErrConflict
}

// Postgres serialization_failure and deadlock_detected. Both roll the
// transaction back, so a retry restarts from a clean read.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

func waitBeforeRetry(ctx context.Context, attempt int) error {
	backoff := time.Duration(attempt) * 10 * time.Millisecond
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}
