package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/model"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, role, first_name, last_name, profession, balance, created_at
		FROM profiles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&profile).Error
	if err != nil {
		return nil, err
	}
	if profile.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &profile, nil
}

// Deposit credits the profile balance by amount if it does not exceed the
// ceiling: ratio times the total price of jobs on contracts where the
// profile is the client, paid or not. Balance read, ceiling computation and
// credit run in one transaction under a row lock, so concurrent deposits by
// the same user cannot lose updates. Returns the new balance.
func (r *ProfileRepository) Deposit(ctx context.Context, profileID uuid.UUID, amount, ratio decimal.Decimal) (decimal.Decimal, error) {
	var newBalance decimal.Decimal

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile struct {
			ID      uuid.UUID
			Balance decimal.Decimal
		}
		err := tx.Raw(`
			SELECT id, balance
			FROM profiles
			WHERE id = ?
			FOR UPDATE
		`, profileID).Scan(&profile).Error
		if err != nil {
			return err
		}
		if profile.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var total struct {
			TotalPrice decimal.Decimal
		}
		err = tx.Raw(`
			SELECT COALESCE(SUM(j.price), 0) AS total_price
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE c.client_id = ?
		`, profileID).Scan(&total).Error
		if err != nil {
			return err
		}

		allowable := total.TotalPrice.Mul(ratio)
		if amount.GreaterThan(allowable) {
			return &DepositLimitError{Allowable: allowable}
		}

		if err := tx.Exec(`
			UPDATE profiles SET balance = balance + ? WHERE id = ?
		`, amount, profileID).Error; err != nil {
			return err
		}

		newBalance = profile.Balance.Add(amount)
		return nil
	})
	if err != nil {
		return decimal.Decimal{}, err
	}
	return newBalance, nil
}
