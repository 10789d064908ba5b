package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/model"
)

type ContractStore interface {
	GetForProfile(ctx context.Context, id, profileID uuid.UUID) (*model.Contract, error)
	ListForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Contract, error)
}

type UnpaidJobLister interface {
	ListUnpaidForProfile(ctx context.Context, profileID uuid.UUID) ([]model.Job, error)
}

type ContractService struct {
	contracts ContractStore
	jobs      UnpaidJobLister
}

func NewContractService(contracts ContractStore, jobs UnpaidJobLister) *ContractService {
	return &ContractService{contracts: contracts, jobs: jobs}
}

// GetContract resolves a contract for its client or contractor. Contracts
// the caller is not a party to are reported as not found, same as absent
// ones, so ids cannot be probed.
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID, principal model.Principal) (*model.Contract, error) {
	if id == uuid.Nil {
		return nil, ErrNotFound
	}
	contract, err := s.contracts.GetForProfile(ctx, id, principal.ProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return contract, nil
}

// ListContracts returns the principal's non-terminated contracts.
func (s *ContractService) ListContracts(ctx context.Context, principal model.Principal) ([]model.Contract, error) {
	return s.contracts.ListForProfile(ctx, principal.ProfileID)
}

// ListUnpaidJobs returns unpaid jobs on the principal's active contracts.
func (s *ContractService) ListUnpaidJobs(ctx context.Context, principal model.Principal) ([]model.Job, error) {
	return s.jobs.ListUnpaidForProfile(ctx, principal.ProfileID)
}
