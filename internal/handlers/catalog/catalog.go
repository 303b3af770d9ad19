package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/catalogservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

//go:generate mockgen -source=catalog.go -destination=mock_catalog.go -package=catalog
type Service interface {
	ActivePackages(ctx context.Context) ([]domain.Package, error)
	GetActivePackage(ctx context.Context, id int) (*domain.Package, error)
	UserPackages(ctx context.Context, userID int) ([]domain.Package, error)
	PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error)
	ListPackages(ctx context.Context, q paging.Query) (paging.Page[domain.Package], error)
	CreatePackage(ctx context.Context, p domain.Package) (*domain.Package, error)
	UpdatePackage(ctx context.Context, id int, patch catalogservice.PackagePatch) (*domain.Package, error)
	DeletePackage(ctx context.Context, id int) error
}

type CatalogHandler struct {
	catalogService Service
}

func New(catalogService Service) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogservice.ErrPackageNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Package not found")
	case errors.Is(err, catalogservice.ErrPackageInUse):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalogservice.ErrInvalidPackage),
		errors.Is(err, domain.ErrInvalidAmount):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error("catalog request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func packages(list []domain.Package) []dto.PackageResponseDTO {
	resp := make([]dto.PackageResponseDTO, 0, len(list))
	for _, p := range list {
		resp = append(resp, dto.NewPackageResponse(p))
	}
	return resp
}

// Packages godoc
//
//	@Summary	List active packages
//	@Tags		Packages
//	@Produce	json
//	@Success	200	{array}		dto.PackageResponseDTO
//	@Failure	500	{object}	utils.Response	"Internal server error"
//	@Router		/api/packages [get]
func (h *CatalogHandler) Packages(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalogService.ActivePackages(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, packages(list))
}

// Package godoc
//
//	@Summary	Get an active package
//	@Tags		Packages
//	@Produce	json
//	@Param		id	path		int	true	"Package id"
//	@Success	200	{object}	dto.PackageResponseDTO
//	@Failure	404	{object}	utils.Response	"Package not found"
//	@Router		/api/packages/{id} [get]
func (h *CatalogHandler) Package(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid package id")
		return
	}
	p, err := h.catalogService.GetActivePackage(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPackageResponse(*p))
}

// UserPackages godoc
//
//	@Summary	Packages unlocked by the current user
//	@Tags		Packages
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{array}		dto.PackageResponseDTO
//	@Failure	401	{object}	utils.Response	"User not authorized"
//	@Router		/api/user/packages [get]
func (h *CatalogHandler) UserPackages(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	list, err := h.catalogService.UserPackages(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, packages(list))
}

// PaymentMethods godoc
//
//	@Summary	List payment methods
//	@Tags		Packages
//	@Produce	json
//	@Success	200	{array}	dto.PaymentMethodResponseDTO
//	@Router		/api/payment-methods [get]
func (h *CatalogHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.catalogService.PaymentMethods(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	resp := make([]dto.PaymentMethodResponseDTO, 0, len(methods))
	for _, m := range methods {
		resp = append(resp, dto.NewPaymentMethodResponse(m))
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// List godoc
//
//	@Summary	List all packages
//	@Tags		Admin packages
//	@Security	BearerAuth
//	@Produce	json
//	@Param		search	query		string	false	"Search in title"
//	@Param		active	query		string	false	"true or false"
//	@Param		page	query		int		false	"Page number"
//	@Success	200		{object}	paging.Page[dto.PackageResponseDTO]
//	@Router		/api/admin/packages [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.catalogService.ListPackages(r.Context(), paging.FromRequest(r, "active"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, dto.NewPackageResponse))
}

// Create godoc
//
//	@Summary	Create package
//	@Tags		Admin packages
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.CreatePackageRequestDTO	true	"Package"
//	@Success	201		{object}	dto.PackageResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid package"
//	@Router		/api/admin/packages [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePackageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	price, err := domain.MoneyFromDecimal(req.Price)
	if err != nil {
		respondError(w, err)
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	p, err := h.catalogService.CreatePackage(r.Context(), domain.Package{
		Title:       req.Title,
		Description: req.Description,
		Price:       price,
		IsActive:    active,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewPackageResponse(*p))
}

// Update godoc
//
//	@Summary	Update package
//	@Tags		Admin packages
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"Package id"
//	@Param		request	body		dto.UpdatePackageRequestDTO	true	"Fields to change"
//	@Success	200		{object}	dto.PackageResponseDTO
//	@Failure	404		{object}	utils.Response	"Package not found"
//	@Router		/api/admin/packages/{id} [patch]
func (h *CatalogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid package id")
		return
	}
	var req dto.UpdatePackageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}

	patch := catalogservice.PackagePatch{
		Title:       req.Title,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
	if req.Price != nil {
		price, err := domain.MoneyFromDecimal(*req.Price)
		if err != nil {
			respondError(w, err)
			return
		}
		patch.Price = &price
	}
	p, err := h.catalogService.UpdatePackage(r.Context(), id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewPackageResponse(*p))
}

// Delete godoc
//
//	@Summary		Delete package
//	@Description	Packages that were already bought cannot be deleted, deactivate them instead.
//	@Tags			Admin packages
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Package id"
//	@Success		204
//	@Failure		404	{object}	utils.Response	"Package not found"
//	@Failure		409	{object}	utils.Response	"Package in use"
//	@Router			/api/admin/packages/{id} [delete]
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid package id")
		return
	}
	if err := h.catalogService.DeletePackage(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
