package kyc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/kycservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/storage"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

// front, back and selfie
const maxFiles = 3

//go:generate mockgen -source=kyc.go -destination=mock_kyc.go -package=kyc
type Service interface {
	Submit(ctx context.Context, userID int, sub kycservice.Submission) (*domain.KYCSubmission, error)
	Get(ctx context.Context, userID int) (*domain.KYCSubmission, error)
	Review(ctx context.Context, id int, status domain.KYCStatus, reason string) (*domain.KYCSubmission, error)
	List(ctx context.Context, q paging.Query) (paging.Page[domain.KYCSubmission], error)
}

type KYCHandler struct {
	kycService Service
	maxUpload  int64
}

func New(kycService Service, maxUpload int64) *KYCHandler {
	return &KYCHandler{
		kycService: kycService,
		maxUpload:  maxUpload,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kycservice.ErrKYCNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "KYC submission not found")
	case errors.Is(err, kycservice.ErrAlreadySubmitted),
		errors.Is(err, kycservice.ErrAlreadyApproved),
		errors.Is(err, kycservice.ErrNotPending):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, kycservice.ErrInvalidDocumentType),
		errors.Is(err, kycservice.ErrDocumentsRequired),
		errors.Is(err, domain.ErrInvalidKYCStatus),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, validate.ErrMultipart):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, validate.ErrImageTooLarge):
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, validate.ErrImageType):
		utils.RespondWithError(w, http.StatusUnsupportedMediaType, err.Error())
	default:
		zap.L().Error("kyc request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Submit godoc
//
//	@Summary		Submit KYC documents
//	@Description	Allowed when there is no submission yet or the last one was rejected.
//	@Tags			KYC
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			document_type	formData	string	true	"citizenship, passport, driving_license or national_id"
//	@Param			document_number	formData	string	true	"Document number"
//	@Param			full_name		formData	string	true	"Name as on the document"
//	@Param			date_of_birth	formData	string	true	"YYYY-MM-DD"
//	@Param			address			formData	string	true	"Address"
//	@Param			phone			formData	string	true	"Phone"
//	@Param			document_front	formData	file	true	"Document front"
//	@Param			document_back	formData	file	false	"Document back"
//	@Param			selfie			formData	file	true	"Selfie holding the document"
//	@Success		201				{object}	dto.KYCResponseDTO
//	@Failure		400				{object}	utils.Response	"Invalid form"
//	@Failure		409				{object}	utils.Response	"Already under review or approved"
//	@Failure		413				{object}	utils.Response	"Image too large"
//	@Failure		415				{object}	utils.Response	"Not a JPEG or PNG image"
//	@Router			/api/kyc [post]
func (h *KYCHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	if err := validate.ParseMultipart(w, r, maxFiles, h.maxUpload); err != nil {
		respondError(w, err)
		return
	}
	form := dto.KYCFormDTO{
		DocumentType:   r.FormValue("document_type"),
		DocumentNumber: r.FormValue("document_number"),
		FullName:       r.FormValue("full_name"),
		DateOfBirth:    r.FormValue("date_of_birth"),
		Address:        r.FormValue("address"),
		Phone:          r.FormValue("phone"),
	}
	if err := validate.Struct(form); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	dob, err := time.Parse(dto.DateLayout, form.DateOfBirth)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "dateofbirth: must be a date in 2006-01-02 format")
		return
	}

	files := make(map[string]*storage.File, maxFiles)
	for _, field := range []string{"document_front", "document_back", "selfie"} {
		f, err := validate.FormImage(r, field, h.maxUpload)
		if err != nil {
			respondError(w, err)
			return
		}
		files[field] = f
	}

	k, err := h.kycService.Submit(r.Context(), userID, kycservice.Submission{
		DocumentType:   domain.DocumentType(form.DocumentType),
		DocumentNumber: form.DocumentNumber,
		FullName:       form.FullName,
		DateOfBirth:    dob,
		Address:        form.Address,
		Phone:          form.Phone,
		Front:          files["document_front"],
		Back:           files["document_back"],
		Selfie:         files["selfie"],
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewKYCResponse(*k))
}

// Get godoc
//
//	@Summary		Current user's KYC status
//	@Description	Responds with null when nothing was submitted.
//	@Tags			KYC
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.KYCResponseDTO
//	@Router			/api/kyc [get]
func (h *KYCHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	k, err := h.kycService.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if k == nil {
		utils.RespondWithJSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewKYCResponse(*k))
}

// Review godoc
//
//	@Summary	Approve or reject a KYC submission
//	@Tags		Admin KYC
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"Submission id"
//	@Param		request	body		dto.KYCReviewRequestDTO	true	"Decision; reason is required to reject"
//	@Success	200		{object}	dto.KYCResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid status or missing reason"
//	@Failure	404		{object}	utils.Response	"KYC submission not found"
//	@Failure	409		{object}	utils.Response	"Already reviewed"
//	@Router		/api/kyc/{id} [patch]
func (h *KYCHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid submission id")
		return
	}
	var req dto.KYCReviewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	k, err := h.kycService.Review(r.Context(), id, domain.KYCStatus(req.Status), req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewKYCResponse(*k))
}

// List godoc
//
//	@Summary	List KYC submissions
//	@Tags		Admin KYC
//	@Security	BearerAuth
//	@Produce	json
//	@Param		search			query		string	false	"Search over name, email and document number"
//	@Param		status			query		string	false	"pending, approved or rejected"
//	@Param		document_type	query		string	false	"Document type"
//	@Param		page			query		int		false	"Page number"
//	@Success	200				{object}	paging.Page[dto.KYCResponseDTO]
//	@Router		/api/admin/kyc [get]
func (h *KYCHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.kycService.List(r.Context(), paging.FromRequest(r, "status", "document_type"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, dto.NewKYCResponse))
}
