package dto

import (
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/shopspring/decimal"
)

type BalanceResponseDTO struct {
	Pending    decimal.Decimal `json:"pending" swaggertype:"string" example:"250"`
	Processing decimal.Decimal `json:"processing" swaggertype:"string" example:"0"`
	Available  decimal.Decimal `json:"available" swaggertype:"string" example:"1000"`
	Withdrawn  decimal.Decimal `json:"withdrawn" swaggertype:"string" example:"500"`
	Total      decimal.Decimal `json:"total" swaggertype:"string" example:"1750"`
}

func NewBalanceResponse(b domain.Balance) BalanceResponseDTO {
	return BalanceResponseDTO{
		Pending:    b.Pending.Decimal(),
		Processing: b.Processing.Decimal(),
		Available:  b.Available.Decimal(),
		Withdrawn:  b.Withdrawn.Decimal(),
		Total:      b.Total().Decimal(),
	}
}

type LedgerEntryResponseDTO struct {
	ID        int64           `json:"id"`
	Bucket    string          `json:"bucket" example:"available"`
	Amount    decimal.Decimal `json:"amount" swaggertype:"string" example:"-500"`
	Kind      string          `json:"kind" example:"withdrawal_reserve"`
	RefType   string          `json:"ref_type" example:"withdrawal"`
	RefID     int             `json:"ref_id" example:"4"`
	Note      string          `json:"note,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewLedgerEntryResponse(e domain.LedgerEntry) LedgerEntryResponseDTO {
	return LedgerEntryResponseDTO{
		ID:        e.ID,
		Bucket:    string(e.Bucket),
		Amount:    e.Amount.Decimal(),
		Kind:      string(e.Kind),
		RefType:   string(e.RefType),
		RefID:     e.RefID,
		Note:      e.Note,
		CreatedAt: e.CreatedAt,
	}
}

type ReleaseCommissionRequestDTO struct {
	TransactionID int `json:"transaction_id" validate:"required,gt=0" example:"12"`
}

type ReleaseCommissionResponseDTO struct {
	UserID int             `json:"user_id" example:"7"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"250"`
}

type AdjustBalanceRequestDTO struct {
	UserID int             `json:"user_id" validate:"required,gt=0" example:"7"`
	Amount decimal.Decimal `json:"amount" swaggertype:"string" example:"100"`
	Note   string          `json:"note" validate:"max=500" example:"Bonus for March campaign"`
}

type BalanceOverviewResponseDTO struct {
	Pending                 decimal.Decimal `json:"pending" swaggertype:"string"`
	Processing              decimal.Decimal `json:"processing" swaggertype:"string"`
	Available               decimal.Decimal `json:"available" swaggertype:"string"`
	Withdrawn               decimal.Decimal `json:"withdrawn" swaggertype:"string"`
	Users                   int             `json:"users"`
	PendingWithdrawals      int             `json:"pending_withdrawals"`
	PendingWithdrawalAmount decimal.Decimal `json:"pending_withdrawal_amount" swaggertype:"string"`
}

func NewBalanceOverviewResponse(o domain.BalanceOverview) BalanceOverviewResponseDTO {
	return BalanceOverviewResponseDTO{
		Pending:                 o.Pending.Decimal(),
		Processing:              o.Processing.Decimal(),
		Available:               o.Available.Decimal(),
		Withdrawn:               o.Withdrawn.Decimal(),
		Users:                   o.Users,
		PendingWithdrawals:      o.PendingWithdrawals,
		PendingWithdrawalAmount: o.PendingWithdrawalAmount.Decimal(),
	}
}

type SyncReportResponseDTO struct {
	Scanned    int   `json:"scanned" example:"120"`
	Corrected  int   `json:"corrected" example:"2"`
	Failed     int   `json:"failed" example:"0"`
	DurationMS int64 `json:"duration_ms" example:"85"`
}
