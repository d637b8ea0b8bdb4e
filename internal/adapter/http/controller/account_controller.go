package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

type AccountController struct {
	service service_interfaces.AccountService
}

func NewAccountController(service service_interfaces.AccountService) *AccountController {
	return &AccountController{service: service}
}

func (c *AccountController) RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc) {
	sub := router.PathPrefix("/api/v1/accounts").Subrouter()
	if authMiddleware != nil {
		sub.Use(authMiddleware)
	}

	sub.HandleFunc("", c.createAccount).Methods(http.MethodPost)
	sub.HandleFunc("/{iban}", c.getAccount).Methods(http.MethodGet)
}

func (c *AccountController) createAccount(w http.ResponseWriter, r *http.Request) {
	var req models.AccountDataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.AccountResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.CreateAccount(r.Context(), req)
	if err != nil {
		writeJSON(w, accountErrorStatus(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (c *AccountController) getAccount(w http.ResponseWriter, r *http.Request) {
	iban := mux.Vars(r)["iban"]

	response, err := c.service.GetAccount(r.Context(), iban)
	if err != nil {
		writeJSON(w, accountErrorStatus(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func accountErrorStatus(err error, message string) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusConflict
	case message == "validation failed":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
