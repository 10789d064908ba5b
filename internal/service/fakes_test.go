package service

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gigpay/ledger-service/internal/model"
	"github.com/gigpay/ledger-service/internal/repository"
)

// fakeLedger is an in-memory stand-in for the gorm repositories. It mirrors
// their transactional semantics under a single mutex: each operation either
// fully applies or leaves the state untouched.
type fakeLedger struct {
	mu        sync.Mutex
	profiles  map[uuid.UUID]*model.Profile
	contracts map[uuid.UUID]*model.Contract
	jobs      map[uuid.UUID]*model.Job

	payErrs     []error
	depositErrs []error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		profiles:  make(map[uuid.UUID]*model.Profile),
		contracts: make(map[uuid.UUID]*model.Contract),
		jobs:      make(map[uuid.UUID]*model.Job),
	}
}

func (f *fakeLedger) addProfile(role model.ProfileRole, profession string, balance decimal.Decimal) *model.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	profile := &model.Profile{
		ID:         uuid.New(),
		Role:       role,
		FirstName:  "Test",
		LastName:   profession,
		Profession: profession,
		Balance:    balance,
		CreatedAt:  time.Now(),
	}
	f.profiles[profile.ID] = profile
	return profile
}

func (f *fakeLedger) addContract(clientID, contractorID uuid.UUID, status model.ContractStatus) *model.Contract {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract := &model.Contract{
		ID:           uuid.New(),
		ClientID:     clientID,
		ContractorID: contractorID,
		Status:       status,
		CreatedAt:    time.Now(),
	}
	f.contracts[contract.ID] = contract
	return contract
}

func (f *fakeLedger) addJob(contractID uuid.UUID, price decimal.Decimal, paid bool, paymentDate *time.Time) *model.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	job := &model.Job{
		ID:          uuid.New(),
		ContractID:  contractID,
		Price:       price,
		Paid:        paid,
		PaymentDate: paymentDate,
		CreatedAt:   time.Now(),
	}
	f.jobs[job.ID] = job
	return job
}

func (f *fakeLedger) failNextPay(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payErrs = append(f.payErrs, errs...)
}

func (f *fakeLedger) failNextDeposit(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.depositErrs = append(f.depositErrs, errs...)
}

func (f *fakeLedger) balanceOf(id uuid.UUID) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[id].Balance
}

func (f *fakeLedger) totalBalance() decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, profile := range f.profiles {
		total = total.Add(profile.Balance)
	}
	return total
}

func (f *fakeLedger) GetForProfile(_ context.Context, id, profileID uuid.UUID) (*model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	contract, ok := f.contracts[id]
	if !ok || !contract.Involves(profileID) {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *contract
	return &copied, nil
}

func (f *fakeLedger) ListForProfile(_ context.Context, profileID uuid.UUID) ([]model.Contract, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var contracts []model.Contract
	for _, contract := range f.contracts {
		if contract.Involves(profileID) && contract.Status != model.ContractStatusTerminated {
			contracts = append(contracts, *contract)
		}
	}
	sort.Slice(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt.Before(contracts[j].CreatedAt)
	})
	return contracts, nil
}

func (f *fakeLedger) ListUnpaidForProfile(_ context.Context, profileID uuid.UUID) ([]model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []model.Job
	for _, job := range f.jobs {
		if job.Paid {
			continue
		}
		contract := f.contracts[job.ContractID]
		if contract == nil || !contract.Involves(profileID) || contract.Status == model.ContractStatusTerminated {
			continue
		}
		jobs = append(jobs, *job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.Before(jobs[j].CreatedAt)
	})
	return jobs, nil
}

func (f *fakeLedger) Pay(_ context.Context, jobID, payerID uuid.UUID, paymentDate time.Time) (*repository.PaymentReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.payErrs) > 0 {
		err := f.payErrs[0]
		f.payErrs = f.payErrs[1:]
		return nil, err
	}

	job, ok := f.jobs[jobID]
	if !ok || job.Paid {
		return nil, gorm.ErrRecordNotFound
	}
	contract := f.contracts[job.ContractID]
	if contract == nil || contract.ClientID != payerID || contract.Status == model.ContractStatusTerminated {
		return nil, gorm.ErrRecordNotFound
	}

	client := f.profiles[contract.ClientID]
	contractor := f.profiles[contract.ContractorID]
	if client.Balance.LessThan(job.Price) {
		return nil, repository.ErrInsufficientBalance
	}

	client.Balance = client.Balance.Sub(job.Price)
	contractor.Balance = contractor.Balance.Add(job.Price)
	job.Paid = true
	job.PaymentDate = &paymentDate

	return &repository.PaymentReceipt{
		JobID:         job.ID,
		ContractID:    contract.ID,
		ClientID:      client.ID,
		ContractorID:  contractor.ID,
		Price:         job.Price,
		ClientBalance: client.Balance,
		PaymentDate:   paymentDate,
	}, nil
}

func (f *fakeLedger) Deposit(_ context.Context, profileID uuid.UUID, amount, ratio decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.depositErrs) > 0 {
		err := f.depositErrs[0]
		f.depositErrs = f.depositErrs[1:]
		return decimal.Decimal{}, err
	}

	profile, ok := f.profiles[profileID]
	if !ok {
		return decimal.Decimal{}, gorm.ErrRecordNotFound
	}

	total := decimal.Zero
	for _, job := range f.jobs {
		contract := f.contracts[job.ContractID]
		if contract != nil && contract.ClientID == profileID {
			total = total.Add(job.Price)
		}
	}

	allowable := total.Mul(ratio)
	if amount.GreaterThan(allowable) {
		return decimal.Decimal{}, &repository.DepositLimitError{Allowable: allowable}
	}

	profile.Balance = profile.Balance.Add(amount)
	return profile.Balance, nil
}

type contractTotal struct {
	contractID uuid.UUID
	total      decimal.Decimal
}

func (f *fakeLedger) paidTotalsByContract(from, to time.Time) []contractTotal {
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, job := range f.jobs {
		if !job.Paid || job.PaymentDate == nil {
			continue
		}
		if job.PaymentDate.Before(from) || job.PaymentDate.After(to) {
			continue
		}
		totals[job.ContractID] = totals[job.ContractID].Add(job.Price)
	}

	ranked := make([]contractTotal, 0, len(totals))
	for contractID, total := range totals {
		ranked = append(ranked, contractTotal{contractID: contractID, total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].total.Equal(ranked[j].total) {
			return ranked[i].total.GreaterThan(ranked[j].total)
		}
		return bytes.Compare(ranked[i].contractID[:], ranked[j].contractID[:]) < 0
	})
	return ranked
}

func (f *fakeLedger) BestProfession(_ context.Context, from, to time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ranked := f.paidTotalsByContract(from, to)
	if len(ranked) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	contract := f.contracts[ranked[0].contractID]
	return f.profiles[contract.ContractorID].Profession, nil
}

func (f *fakeLedger) BestClients(_ context.Context, from, to time.Time, limit int) ([]model.ClientRanking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ranked := f.paidTotalsByContract(from, to)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	rankings := make([]model.ClientRanking, 0, len(ranked))
	for _, entry := range ranked {
		contract := f.contracts[entry.contractID]
		client := f.profiles[contract.ClientID]
		rankings = append(rankings, model.ClientRanking{
			ContractID: contract.ID,
			ClientID:   client.ID,
			FullName:   client.FullName(),
			Paid:       entry.total,
		})
	}
	return rankings, nil
}
