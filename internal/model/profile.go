package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProfileRole string

const (
	RoleClient     ProfileRole = "client"
	RoleContractor ProfileRole = "contractor"
)

type Profile struct {
	ID         uuid.UUID       `json:"id"`
	Role       ProfileRole     `json:"role"`
	FirstName  string          `json:"firstName"`
	LastName   string          `json:"lastName"`
	Profession string          `json:"profession"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  time.Time       `json:"createdAt"`
}

func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Principal is the authenticated caller resolved by the auth middleware.
type Principal struct {
	ProfileID uuid.UUID
	Role      ProfileRole
}
