package payments

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/paymentservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

const proofField = "proof"

//go:generate mockgen -source=payments.go -destination=mock_payments.go -package=payments
type Service interface {
	Create(ctx context.Context, userID, packageID int, method, referralCode string) (*domain.Transaction, error)
	AttachProof(ctx context.Context, userID, transactionID int, file storage.File) (*domain.Transaction, error)
	Approve(ctx context.Context, transactionID int) (*domain.Transaction, error)
	Reject(ctx context.Context, transactionID int, reason string) (*domain.Transaction, error)
	ValidateReferral(ctx context.Context, code string) (*domain.User, error)
	ListOwn(ctx context.Context, userID int) ([]domain.Transaction, error)
	List(ctx context.Context, q paging.Query) (paging.Page[domain.Transaction], error)
}

type PaymentHandler struct {
	paymentService Service
	maxUpload      int64
}

func New(paymentService Service, maxUpload int64) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		maxUpload:      maxUpload,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, paymentservice.ErrPackageNotFound),
		errors.Is(err, paymentservice.ErrTransactionNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, paymentservice.ErrPaymentMethodNotFound),
		errors.Is(err, paymentservice.ErrInvalidReferral),
		errors.Is(err, paymentservice.ErrSelfReferral),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, validate.ErrMultipart):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, paymentservice.ErrProofAlreadyVerified),
		errors.Is(err, domain.ErrTransactionFinalized),
		errors.Is(err, domain.ErrProofRequired):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, validate.ErrImageTooLarge):
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, validate.ErrImageType):
		utils.RespondWithError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		zap.L().Error("payment request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Create godoc
//
//	@Summary		Start a package purchase
//	@Description	Creates a pending transaction at the package's current price. The optional referral code must belong to another user.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateTransactionRequestDTO	true	"Order"
//	@Success		201		{object}	dto.TransactionResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid payment method or referral code"
//	@Failure		404		{object}	utils.Response	"Package not found"
//	@Router			/api/transactions [post]
func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	var req dto.CreateTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	t, err := h.paymentService.Create(r.Context(), userID, req.PackageID, req.PaymentMethod, req.ReferralCode)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewTransactionResponse(*t))
}

// UploadProof godoc
//
//	@Summary		Upload payment proof
//	@Description	JPEG or PNG up to the configured size. Queues the transaction for verification; a rejected transaction is resubmitted.
//	@Tags			Payments
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			id		path		int		true	"Transaction id"
//	@Param			proof	formData	file	true	"Receipt screenshot"
//	@Success		200		{object}	dto.TransactionResponseDTO
//	@Failure		404		{object}	utils.Response	"Transaction not found"
//	@Failure		409		{object}	utils.Response	"Payment has already been verified"
//	@Failure		413		{object}	utils.Response	"Image too large"
//	@Failure		415		{object}	utils.Response	"Not a JPEG or PNG image"
//	@Router			/api/transactions/{id}/proof [post]
func (h *PaymentHandler) UploadProof(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid transaction id")
		return
	}
	if err := validate.ParseMultipart(w, r, 1, h.maxUpload); err != nil {
		respondError(w, err)
		return
	}
	file, err := validate.FormImage(r, proofField, h.maxUpload)
	if err != nil {
		respondError(w, err)
		return
	}
	if file == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Payment proof image is required")
		return
	}
	t, err := h.paymentService.AttachProof(r.Context(), userID, id, *file)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionResponse(*t))
}

// ListOwn godoc
//
//	@Summary	Current user's transactions
//	@Tags		Payments
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}	dto.TransactionResponseDTO
//	@Router		/api/transactions [get]
func (h *PaymentHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	list, err := h.paymentService.ListOwn(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]dto.TransactionResponseDTO, 0, len(list))
	for _, t := range list {
		resp = append(resp, dto.NewTransactionResponse(t))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// ValidateReferral godoc
//
//	@Summary	Check a referral code
//	@Tags		Payments
//	@Produce	json
//	@Param		code	query		string	true	"Referral code"
//	@Success	200		{object}	dto.ReferralValidationResponseDTO
//	@Router		/api/referral/validate [get]
func (h *PaymentHandler) ValidateReferral(w http.ResponseWriter, r *http.Request) {
	referrer, err := h.paymentService.ValidateReferral(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		if errors.Is(err, paymentservice.ErrInvalidReferral) {
			utils.RespondWithJSON(w, http.StatusOK, dto.ReferralValidationResponseDTO{Valid: false})
			return
		}
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.ReferralValidationResponseDTO{
		Valid:        true,
		ReferrerName: referrer.FullName,
	})
}

// List godoc
//
//	@Summary		List transactions
//	@Description	Search over user email, user name and package title; filter by status and payment method.
//	@Tags			Admin payments
//	@Security		BearerAuth
//	@Produce		json
//	@Param			search			query		string	false	"Search term"
//	@Param			status			query		string	false	"pending, pending_verification, completed or rejected"
//	@Param			payment_method	query		string	false	"Payment method code"
//	@Param			page			query		int		false	"Page number"
//	@Success		200				{object}	paging.Page[dto.TransactionResponseDTO]
//	@Router			/api/admin/transactions [get]
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.paymentService.List(r.Context(), paging.FromRequest(r, "status", "payment_method"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, dto.NewTransactionResponse))
}

// Approve godoc
//
//	@Summary		Approve a payment
//	@Description	Completes the transaction, enrolls the buyer and credits the referrer's commission.
//	@Tags			Admin payments
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			Idempotency-Key	header		string								false	"Replay protection key"
//	@Param			request			body		dto.ApproveTransactionRequestDTO	true	"Transaction"
//	@Success		200				{object}	dto.TransactionResponseDTO
//	@Failure		404				{object}	utils.Response	"Transaction not found"
//	@Failure		409				{object}	utils.Response	"Already finalized or no proof"
//	@Router			/api/admin/transactions/approve [post]
func (h *PaymentHandler) Approve(w http.ResponseWriter, r *http.Request) {
	var req dto.ApproveTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	t, err := h.paymentService.Approve(r.Context(), req.TransactionID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionResponse(*t))
}

// Reject godoc
//
//	@Summary	Reject a payment
//	@Tags		Admin payments
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		Idempotency-Key	header		string							false	"Replay protection key"
//	@Param		request			body		dto.RejectTransactionRequestDTO	true	"Transaction and reason"
//	@Success	200				{object}	dto.TransactionResponseDTO
//	@Failure	400				{object}	utils.Response	"Rejection reason is required"
//	@Failure	409				{object}	utils.Response	"Already finalized"
//	@Router		/api/admin/transactions/reject [post]
func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req dto.RejectTransactionRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	t, err := h.paymentService.Reject(r.Context(), req.TransactionID, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewTransactionResponse(*t))
}
