package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// BestProfession returns the profession of the contractor on the contract
// with the highest paid-job total inside [from, to]. Ties resolve to the
// lowest contract id.
func (r *ReportRepository) BestProfession(ctx context.Context, from, to time.Time) (string, error) {
	var row struct {
		ContractID uuid.UUID
		Profession string
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT c.id AS contract_id, p.profession
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.contractor_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY c.id, p.profession
		ORDER BY SUM(j.price) DESC, c.id ASC
		LIMIT 1
	`, from, to).Scan(&row).Error
	if err != nil {
		return "", err
	}
	if row.ContractID == uuid.Nil {
		return "", gorm.ErrRecordNotFound
	}
	return row.Profession, nil
}

// BestClients ranks contracts by paid-job total inside [from, to] and
// resolves each contract's client. Ranking granularity is the contract, not
// the client aggregate, so a client with several contracts can occupy
// several rows. Ties resolve to the lowest contract id.
func (r *ReportRepository) BestClients(ctx context.Context, from, to time.Time, limit int) ([]model.ClientRanking, error) {
	var rankings []model.ClientRanking
	err := r.db.WithContext(ctx).Raw(`
		SELECT
			c.id AS contract_id,
			p.id AS client_id,
			p.first_name || ' ' || p.last_name AS full_name,
			SUM(j.price) AS paid
		FROM jobs j
		JOIN contracts c ON c.id = j.contract_id
		JOIN profiles p ON p.id = c.client_id
		WHERE j.paid
			AND j.payment_date >= ?
			AND j.payment_date <= ?
		GROUP BY c.id, p.id, p.first_name, p.last_name
		ORDER BY SUM(j.price) DESC, c.id ASC
		LIMIT ?
	`, from, to, limit).Scan(&rankings).Error
	if err != nil {
		return nil, err
	}
	return rankings, nil
}
