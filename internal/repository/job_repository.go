package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/model"
)

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// PaymentReceipt describes a committed job payment.
type PaymentReceipt struct {
	JobID         uuid.UUID
	ContractID    uuid.UUID
	ClientID      uuid.UUID
	ContractorID  uuid.UUID
	Price         decimal.Decimal
	ClientBalance decimal.Decimal
	PaymentDate   time.Time
}

// ListUnpaidForProfile returns unpaid jobs on non-terminated contracts that
// involve the profile. Single joined query.
func (r *JobRepository) ListUnpaidForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Job, error) {
	var jobs []model.Job
	err := r.db.WithContext(ctx).Raw(`
		SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date, j.created_at
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		WHERE NOT j.paid
			AND (c.client_id = ? OR c.contractor_id = ?)
			AND c.status <> 'terminated'
		ORDER BY j.created_at ASC
	`, profileID, profileID).Scan(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Pay transfers the job price from the client to the contractor and marks
// the job paid, all in one transaction. The job row is locked first, so
// concurrent payments of the same job serialize and the losers see the job
// as already paid (not found). Profile rows are locked in id order to keep
// lock acquisition deadlock-free against concurrent transfers.
func (r *JobRepository) Pay(ctx context.Context, jobID, payerID uuid.UUID, paymentDate time.Time) (*PaymentReceipt, error) {
	var receipt *PaymentReceipt

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job struct {
			ID           uuid.UUID
			ContractID   uuid.UUID
			ClientID     uuid.UUID
			ContractorID uuid.UUID
			Price        decimal.Decimal
		}
		err := tx.Raw(`
			SELECT j.id, j.contract_id, c.client_id, c.contractor_id, j.price
			FROM jobs j
			JOIN contracts c ON c.id = j.contract_id
			WHERE j.id = ?
				AND NOT j.paid
				AND c.client_id = ?
				AND c.status <> 'terminated'
			FOR UPDATE OF j
		`, jobID, payerID).Scan(&job).Error
		if err != nil {
			return err
		}
		if job.ID == uuid.Nil {
			return gorm.ErrRecordNotFound
		}

		var balances []struct {
			ID      uuid.UUID
			Balance decimal.Decimal
		}
		err = tx.Raw(`
			SELECT id, balance
			FROM profiles
			WHERE id IN (?, ?)
			ORDER BY id
			FOR UPDATE
		`, job.ClientID, job.ContractorID).Scan(&balances).Error
		if err != nil {
			return err
		}

		var clientBalance decimal.Decimal
		for _, row := range balances {
			if row.ID == job.ClientID {
				clientBalance = row.Balance
			}
		}
		if clientBalance.LessThan(job.Price) {
			return ErrInsufficientBalance
		}

		if err := tx.Exec(`
			UPDATE profiles SET balance = balance - ? WHERE id = ?
		`, job.Price, job.ClientID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE profiles SET balance = balance + ? WHERE id = ?
		`, job.Price, job.ContractorID).Error; err != nil {
			return err
		}
		if err := tx.Exec(`
			UPDATE jobs SET paid = TRUE, payment_date = ? WHERE id = ?
		`, paymentDate, job.ID).Error; err != nil {
			return err
		}

		receipt = &PaymentReceipt{
			JobID:         job.ID,
			ContractID:    job.ContractID,
			ClientID:      job.ClientID,
			ContractorID:  job.ContractorID,
			Price:         job.Price,
			ClientBalance: clientBalance.Sub(job.Price),
			PaymentDate:   paymentDate,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}
