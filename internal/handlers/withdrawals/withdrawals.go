package withdrawals

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/withdrawalservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

//go:generate mockgen -source=withdrawals.go -destination=mock_withdrawals.go -package=withdrawals
type Service interface {
	Request(ctx context.Context, req withdrawalservice.Request) (*domain.Withdrawal, error)
	Process(ctx context.Context, id int, action withdrawalservice.Action, value string) (*domain.Withdrawal, error)
	ListOwn(ctx context.Context, userID int) ([]domain.Withdrawal, error)
	List(ctx context.Context, q paging.Query) (paging.Page[domain.Withdrawal], error)
}

type WithdrawalHandler struct {
	withdrawalService Service
}

func New(withdrawalService Service) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalService: withdrawalService}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, withdrawalservice.ErrKYCNotSubmitted),
		errors.Is(err, withdrawalservice.ErrKYCPending),
		errors.Is(err, withdrawalservice.ErrKYCRejected):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, withdrawalservice.ErrExceedsBalance):
		utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, withdrawalservice.ErrWithdrawalNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Withdrawal not found")
	case errors.Is(err, withdrawalservice.ErrBelowMinimum),
		errors.Is(err, withdrawalservice.ErrInvalidAction),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidPayoutMethod),
		errors.Is(err, domain.ErrPayoutDetails),
		errors.Is(err, domain.ErrTransactionIDRequired),
		errors.Is(err, domain.ErrReasonRequired):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrWithdrawalFinalized),
		errors.Is(err, domain.ErrWithdrawalNotPending):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		zap.L().Error("withdrawal request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Request godoc
//
//	@Summary		Request a payout
//	@Description	Requires approved KYC. The amount is reserved from the available balance until an admin approves or rejects.
//	@Tags			Affiliate
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.WithdrawalRequestDTO	true	"Amount and payout destination"
//	@Success		201		{object}	dto.WithdrawalResponseDTO
//	@Failure		400		{object}	utils.Response	"Below minimum or incomplete payout details"
//	@Failure		402		{object}	utils.Response	"Withdrawal amount cannot exceed available balance"
//	@Failure		403		{object}	utils.Response	"KYC is not approved"
//	@Router			/api/affiliate/withdrawals [post]
func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.WithdrawalRequestDTO
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

	wd, err := h.withdrawalService.Request(r.Context(), withdrawalservice.Request{
		UserID: userID,
		Amount: amount,
		Method: domain.PayoutMethod(req.Method),
		Details: domain.PayoutDetails{
			AccountName:   req.AccountName,
			AccountNumber: req.AccountNumber,
			BankName:      req.BankName,
		},
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewWithdrawalResponse(*wd))
}

// ListOwn godoc
//
//	@Summary	Current user's withdrawals
//	@Tags		Affiliate
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	dto.WithdrawalResponseDTO
//	@Router		/api/affiliate/withdrawals [get]
func (h *WithdrawalHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	list, err := h.withdrawalService.ListOwn(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]dto.WithdrawalResponseDTO, 0, len(list))
	for _, wd := range list {
		resp = append(resp, dto.NewWithdrawalResponse(wd))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// List godoc
//
//	@Summary	List withdrawals
//	@Tags		Admin Withdrawals
//	@Security	BearerAuth
//	@Produce	json
//	@Param		search	query		string	false	"Search over user email, name and transaction id"
//	@Param		status	query		string	false	"pending, processing, completed or rejected"
//	@Param		method	query		string	false	"bank_transfer, esewa or khalti"
//	@Param		page	query		int		false	"Page number"
//	@Success	200		{object}	paging.Page[dto.WithdrawalResponseDTO]
//	@Router		/api/admin/withdrawals [get]
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.withdrawalService.List(r.Context(), paging.FromRequest(r, "status", "method"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, dto.NewWithdrawalResponse))
}

// Process godoc
//
//	@Summary		Process, approve or reject a withdrawal
//	@Description	approve needs transaction_id, reject needs reason. A finalized withdrawal cannot be changed.
//	@Tags			Admin Withdrawals
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string							false	"Replays the first response for a repeated key"
//	@Param			request			body		dto.ProcessWithdrawalRequestDTO	true	"Decision"
//	@Success		200				{object}	dto.WithdrawalResponseDTO
//	@Failure		400				{object}	utils.Response	"Missing transaction id or reason"
//	@Failure		404				{object}	utils.Response	"Withdrawal not found"
//	@Failure		409				{object}	utils.Response	"Already finalized"
//	@Router			/api/admin/withdrawals/process [post]
func (h *WithdrawalHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req dto.ProcessWithdrawalRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}

	action := withdrawalservice.Action(req.Action)
	value := req.TransactionID
	if action == withdrawalservice.ActionReject {
		value = req.Reason
	}
	wd, err := h.withdrawalService.Process(r.Context(), req.WithdrawalID, action, value)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewWithdrawalResponse(*wd))
}
