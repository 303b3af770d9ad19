package balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/learnhub/internal/balancesync"
	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/balanceservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance
type Service interface {
	GetBalance(ctx context.Context, userID int) (*domain.Balance, error)
	Ledger(ctx context.Context, userID int) ([]domain.LedgerEntry, error)
	ReleaseCommission(ctx context.Context, transactionID int) (*domain.Movement, error)
	Adjust(ctx context.Context, userID int, amount domain.Money, note string) (*domain.Balance, error)
	Overview(ctx context.Context) (*domain.BalanceOverview, error)
}

type Syncer interface {
	Sync(ctx context.Context) (*balancesync.Report, error)
}

type BalanceHandler struct {
	balanceService Service
	syncer         Syncer
}

func New(balanceService Service, syncer Syncer) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
		syncer:         syncer,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, balanceservice.ErrCommissionNotFound),
		errors.Is(err, balanceservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, balanceservice.ErrAlreadyReleased),
		errors.Is(err, balancesync.ErrSyncInProgress):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, balanceservice.ErrNoteRequired),
		errors.Is(err, domain.ErrInvalidAmount):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("balance request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// GetBalance godoc
//
//	@Summary		Get affiliate balance
//	@Description	The four balance buckets and their total.
//	@Tags			Affiliate
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		500	{object}	utils.Response	"Internal server error"
//	@Router			/api/affiliate/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	balance, err := h.balanceService.GetBalance(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(*balance))
}

// Ledger godoc
//
//	@Summary	Get affiliate ledger
//	@Tags		Affiliate
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	dto.LedgerEntryResponseDTO	"Newest first"
//	@Router		/api/affiliate/ledger [get]
func (h *BalanceHandler) Ledger(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	entries, err := h.balanceService.Ledger(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]dto.LedgerEntryResponseDTO, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.NewLedgerEntryResponse(e))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ReleaseCommission godoc
//
//	@Summary	Release a referral commission
//	@Tags		Admin Balance
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		Idempotency-Key	header		string							false	"Replays the first response for a repeated key"
//	@Param		request			body		dto.ReleaseCommissionRequestDTO	true	"Transaction that earned the commission"
//	@Success	200				{object}	dto.ReleaseCommissionResponseDTO
//	@Failure	404				{object}	utils.Response	"No commission for this transaction"
//	@Failure	409				{object}	utils.Response	"Already released"
//	@Router		/api/admin/balance/release [post]
func (h *BalanceHandler) ReleaseCommission(w http.ResponseWriter, r *http.Request) {
	var req dto.ReleaseCommissionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	m, err := h.balanceService.ReleaseCommission(r.Context(), req.TransactionID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ReleaseCommissionResponseDTO{
		UserID: m.UserID,
		Amount: m.Amount.Decimal(),
	})
}

// Adjust godoc
//
//	@Summary	Credit a user's available balance
//	@Tags		Admin Balance
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		Idempotency-Key	header		string						false	"Replays the first response for a repeated key"
//	@Param		request			body		dto.AdjustBalanceRequestDTO	true	"Credit"
//	@Success	200				{object}	dto.BalanceResponseDTO
//	@Failure	400				{object}	utils.Response	"Invalid amount or missing note"
//	@Failure	404				{object}	utils.Response	"User not found"
//	@Router		/api/admin/balance/adjust [post]
func (h *BalanceHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustBalanceRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	amount, err := domain.MoneyFromDecimal(req.Amount)
	if err != nil {
		respondError(w, err)
		return
	}
	balance, err := h.balanceService.Adjust(r.Context(), req.UserID, amount, req.Note)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceResponse(*balance))
}

// Overview godoc
//
//	@Summary	Platform balance totals
//	@Tags		Admin Balance
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	dto.BalanceOverviewResponseDTO
//	@Router		/api/admin/balance/overview [get]
func (h *BalanceHandler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.balanceService.Overview(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewBalanceOverviewResponse(*overview))
}

// Sync godoc
//
//	@Summary		Rebuild balances from the ledger
//	@Description	Recomputes every balance projection from its ledger entries and fixes the ones that drifted.
//	@Tags			Admin Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.SyncReportResponseDTO
//	@Failure		409	{object}	utils.Response	"A sync is already running"
//	@Router			/api/admin/sync-balances [post]
func (h *BalanceHandler) Sync(w http.ResponseWriter, r *http.Request) {
	report, err := h.syncer.Sync(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.SyncReportResponseDTO{
		Scanned:    report.Scanned,
		Corrected:  report.Corrected,
		Failed:     report.Failed,
		DurationMS: report.Duration.Milliseconds(),
	})
}
