package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/contactservice"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

//go:generate mockgen -source=contacts.go -destination=mock_contacts.go -package=contacts
type Service interface {
	Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
	List(ctx context.Context, q paging.Query) (paging.Page[domain.ContactMessage], error)
	Get(ctx context.Context, id int) (*domain.ContactMessage, error)
	Update(ctx context.Context, id int, p contactservice.Patch) (*domain.ContactMessage, error)
	Delete(ctx context.Context, id int) error
}

type ContactHandler struct {
	contactService Service
}

func New(contactService Service) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, contactservice.ErrMessageNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Message not found")
	case errors.Is(err, contactservice.ErrInvalidStatus),
		errors.Is(err, contactservice.ErrInvalidPriority):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("contact request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Submit godoc
//
//	@Summary	Send a message to the team
//	@Tags		Contact
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.ContactRequestDTO	true	"Message"
//	@Success	201		{object}	dto.ContactResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid request"
//	@Router		/api/contact [post]
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	msg, err := h.contactService.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewContactResponse(*msg))
}

// List godoc
//
//	@Summary	List contact messages
//	@Tags		Admin Contacts
//	@Security	BearerAuth
//	@Produce	json
//	@Param		search		query		string	false	"Search over name, email and subject"
//	@Param		status		query		string	false	"unread, read, replied or archived"
//	@Param		priority	query		string	false	"low, normal or high"
//	@Param		page		query		int		false	"Page number"
//	@Success	200			{object}	paging.Page[dto.ContactResponseDTO]
//	@Router		/api/admin/contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.contactService.List(r.Context(), paging.FromRequest(r, "status", "priority"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, dto.NewContactResponse))
}

// Get godoc
//
//	@Summary		Read a contact message
//	@Description	An unread message is marked read.
//	@Tags			Admin Contacts
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		int	true	"Message id"
//	@Success		200	{object}	dto.ContactResponseDTO
//	@Failure		404	{object}	utils.Response	"Message not found"
//	@Router			/api/admin/contacts/{id} [get]
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid message id")
		return
	}
	msg, err := h.contactService.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewContactResponse(*msg))
}

// Update godoc
//
//	@Summary		Update a contact message
//	@Description	A non-empty reply marks the message replied.
//	@Tags			Admin Contacts
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Message id"
//	@Param			request	body		dto.UpdateContactRequestDTO	true	"Fields to change"
//	@Success		200		{object}	dto.ContactResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid status or priority"
//	@Failure		404		{object}	utils.Response	"Message not found"
//	@Router			/api/admin/contacts/{id} [patch]
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid message id")
		return
	}
	var req dto.UpdateContactRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}

	patch := contactservice.Patch{Reply: req.Reply}
	if req.Status != nil {
		status := domain.ContactStatus(*req.Status)
		patch.Status = &status
	}
	if req.Priority != nil {
		priority := domain.ContactPriority(*req.Priority)
		patch.Priority = &priority
	}
	msg, err := h.contactService.Update(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewContactResponse(*msg))
}

// Delete godoc
//
//	@Summary	Delete a contact message
//	@Tags		Admin Contacts
//	@Security	BearerAuth
//	@Param		id	path	int	true	"Message id"
//	@Success	204
//	@Failure	404	{object}	utils.Response	"Message not found"
//	@Router		/api/admin/contacts/{id} [delete]
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid message id")
		return
	}
	if err := h.contactService.Delete(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
