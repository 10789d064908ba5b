package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientRanking is one row of the best-clients report. Ranking is per
// contract: a client holding several contracts appears once per contract.
type ClientRanking struct {
	ContractID uuid.UUID       `json:"-"`
	ClientID   uuid.UUID       `json:"id"`
	FullName   string          `json:"fullName"`
	Paid       decimal.Decimal `json:"paid"`
}

type EarningsReport struct {
	PeriodStart    time.Time
	PeriodEnd      time.Time
	BestProfession string
	TotalPaid      decimal.Decimal
	Clients        []ClientRanking
}
