package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/GlebRadaev/learnhub/internal/domain"
	"github.com/GlebRadaev/learnhub/internal/dto"
	"github.com/GlebRadaev/learnhub/internal/service/authservice"
	"github.com/GlebRadaev/learnhub/internal/service/userservice"
	"github.com/GlebRadaev/learnhub/pkg/auth"
	"github.com/GlebRadaev/learnhub/pkg/paging"
	"github.com/GlebRadaev/learnhub/pkg/utils"
	"github.com/GlebRadaev/learnhub/pkg/validate"
	"go.uber.org/zap"
)

//go:generate mockgen -source=users.go -destination=mock_users.go -package=users
type Service interface {
	Get(ctx context.Context, id int) (*domain.User, error)
	List(ctx context.Context, q paging.Query) (paging.Page[domain.User], error)
	Create(ctx context.Context, nu authservice.NewUser) (*domain.User, error)
	Update(ctx context.Context, actorID, id int, p userservice.Patch) (*domain.User, error)
	SetStatus(ctx context.Context, actorID, id int, status domain.UserStatus) (*domain.User, error)
	SetRole(ctx context.Context, actorID, id int, role domain.Role) (*domain.User, error)
	Delete(ctx context.Context, actorID, id int) error
}

type UserHandler struct {
	userService Service
}

func New(userService Service) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, userservice.ErrUserNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, userservice.ErrSelfAction):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, userservice.ErrInvalidRole),
		errors.Is(err, userservice.ErrInvalidStatus),
		errors.Is(err, auth.ErrPasswordTooLong):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, userservice.ErrEmailTaken):
		utils.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		zap.L().Error("user request failed", zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// Me godoc
//
//	@Summary		Current user
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.UserResponseDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Failure		404	{object}	utils.Response	"User not found"
//	@Router			/api/user/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(auth.UserIDKey).(int)

	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(*user))
}

// List godoc
//
//	@Summary		List users
//	@Description	Search over email and name, filter by role and status, 10 per page.
//	@Tags			Admin users
//	@Security		BearerAuth
//	@Produce		json
//	@Param			search	query		string	false	"Search term"
//	@Param			role	query		string	false	"user or admin"
//	@Param			status	query		string	false	"active or suspended"
//	@Param			page	query		int		false	"Page number"
//	@Success		200		{object}	paging.Page[dto.UserResponseDTO]
//	@Failure		403		{object}	utils.Response	"Admin access required"
//	@Router			/api/admin/users [get]
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.userService.List(r.Context(), paging.FromRequest(r, "role", "status"))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, paging.Map(page, dto.NewUserResponse))
}

// Get godoc
//
//	@Summary	Get user
//	@Tags		Admin users
//	@Security	BearerAuth
//	@Produce	json
//	@Param		id	path		int	true	"User id"
//	@Success	200	{object}	dto.UserResponseDTO
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Router		/api/admin/users/{id} [get]
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(*user))
}

// Create godoc
//
//	@Summary	Create user
//	@Tags		Admin users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		dto.CreateUserRequestDTO	true	"New user"
//	@Success	201		{object}	dto.UserResponseDTO
//	@Failure	400		{object}	utils.Response	"Invalid request body"
//	@Failure	409		{object}	utils.Response	"Email already registered"
//	@Router		/api/admin/users [post]
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	role := domain.Role(req.Role)
	if role == "" {
		role = domain.RoleUser
	}
	user, err := h.userService.Create(r.Context(), authservice.NewUser{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dto.NewUserResponse(*user))
}

// Update godoc
//
//	@Summary		Update user
//	@Description	Partial update. An admin cannot change their own role or status.
//	@Tags			Admin users
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"User id"
//	@Param			request	body		dto.UpdateUserRequestDTO	true	"Fields to change"
//	@Success		200		{object}	dto.UserResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		403		{object}	utils.Response	"Self action"
//	@Failure		404		{object}	utils.Response	"User not found"
//	@Router			/api/admin/users/{id} [patch]
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value(auth.UserIDKey).(int)
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req dto.UpdateUserRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}

	patch := userservice.Patch{Email: req.Email, FullName: req.FullName}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		patch.Role = &role
	}
	if req.Status != nil {
		status := domain.UserStatus(*req.Status)
		patch.Status = &status
	}
	user, err := h.userService.Update(r.Context(), actorID, id, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(*user))
}

// SetStatus godoc
//
//	@Summary	Suspend or reactivate a user
//	@Tags		Admin users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int							true	"User id"
//	@Param		request	body		dto.UserStatusRequestDTO	true	"New status"
//	@Success	200		{object}	dto.UserResponseDTO
//	@Failure	403		{object}	utils.Response	"Self action"
//	@Failure	404		{object}	utils.Response	"User not found"
//	@Router		/api/admin/users/{id}/status [patch]
func (h *UserHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value(auth.UserIDKey).(int)
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req dto.UserStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	user, err := h.userService.SetStatus(r.Context(), actorID, id, domain.UserStatus(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(*user))
}

// SetRole godoc
//
//	@Summary	Change a user's role
//	@Tags		Admin users
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		id		path		int						true	"User id"
//	@Param		request	body		dto.UserRoleRequestDTO	true	"New role"
//	@Success	200		{object}	dto.UserResponseDTO
//	@Failure	403		{object}	utils.Response	"Self action"
//	@Failure	404		{object}	utils.Response	"User not found"
//	@Router		/api/admin/users/{id}/role [patch]
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value(auth.UserIDKey).(int)
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	var req dto.UserRoleRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, validate.Message(err))
		return
	}
	user, err := h.userService.SetRole(r.Context(), actorID, id, domain.Role(req.Role))
	if err != nil {
		respondError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.NewUserResponse(*user))
}

// Delete godoc
//
//	@Summary	Delete user
//	@Tags		Admin users
//	@Security	BearerAuth
//	@Param		id	path	int	true	"User id"
//	@Success	204
//	@Failure	403	{object}	utils.Response	"Self action"
//	@Failure	404	{object}	utils.Response	"User not found"
//	@Router		/api/admin/users/{id} [delete]
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorID := r.Context().Value(auth.UserIDKey).(int)
	id, err := utils.URLParamInt(r, "id")
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if err := h.userService.Delete(r.Context(), actorID, id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
