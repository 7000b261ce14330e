package http

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/foodtruck-service/internal/account"
	"github.com/vasiliy-maslov/foodtruck-service/internal/auth"
)

type SignInRequest struct {
	Kind         string `json:"kind" validate:"required"`
	BusinessName string `json:"business_name,omitempty" validate:"omitempty,max=200"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type UpdateAccountRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	LegalName  *string `json:"legal_name,omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone      *string `json:"phone,omitempty"`
	Address1   *string `json:"address1,omitempty"`
	Address2   *string `json:"address2,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postal_code,omitempty"`
	County     *string `json:"county,omitempty"`
	Country    *string `json:"country,omitempty"`
}

type AddUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required,min=1"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Role      string `json:"role,omitempty" validate:"omitempty,oneof=owner manager staff admin"`
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	var req SignInRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	session, err := h.accounts.SignIn(r.Context(), *identity, account.SignInRequest{
		Kind:         account.ProfileKind(req.Kind),
		BusinessName: req.BusinessName,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to sign in")
		return
	}

	code := http.StatusOK
	if session.Provisioned {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, session)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	session, err := h.accounts.CurrentSession(r.Context(), identity.UID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to load session")
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

func (h *Handler) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	acct, err := h.accounts.GetAccount(r.Context(), accountIDFrom(r))
	if err != nil {
		respondWithServiceError(w, err, "Failed to get account")
		return
	}
	respondWithJSON(w, http.StatusOK, acct)
}

func (h *Handler) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var req UpdateAccountRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	acct, err := h.accounts.UpdateAccount(r.Context(), accountRoleFrom(r), accountIDFrom(r), account.AccountPatch{
		Name:       req.Name,
		LegalName:  req.LegalName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address1:   req.Address1,
		Address2:   req.Address2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		County:     req.County,
		Country:    req.Country,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to update account")
		return
	}
	respondWithJSON(w, http.StatusOK, acct)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.accounts.ListUsers(r.Context(), accountIDFrom(r))
	if err != nil {
		respondWithServiceError(w, err, "Failed to list users")
		return
	}
	respondWithJSON(w, http.StatusOK, users)
}

func (h *Handler) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var req AddUserRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	user, err := h.accounts.AddUser(r.Context(), accountRoleFrom(r), &account.User{
		AccountID: accountIDFrom(r),
		Role:      account.Role(req.Role),
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		respondWithServiceError(w, err, "Failed to add user")
		return
	}

	log.Info().Stringer("account_id", user.AccountID).Stringer("user_id", user.ID).Msg("Account user invited")
	respondWithJSON(w, http.StatusCreated, user)
}
