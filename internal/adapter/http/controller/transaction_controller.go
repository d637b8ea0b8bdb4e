package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

const dateLayout = "2006-01-02"

type TransactionController struct {
	service service_interfaces.TransactionService
}

func NewTransactionController(service service_interfaces.TransactionService) *TransactionController {
	return &TransactionController{service: service}
}

func (c *TransactionController) RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc) {
	sub := router.PathPrefix("/api/v1/transactions").Subrouter()
	if authMiddleware != nil {
		sub.Use(authMiddleware)
	}

	sub.HandleFunc("", c.postTransaction).Methods(http.MethodPost)
	sub.HandleFunc("/transfer", c.transferFunds).Methods(http.MethodPost)
	sub.HandleFunc("/{iban}/recent", c.recentTransactions).Methods(http.MethodGet)
	sub.HandleFunc("/{iban}/history", c.transactionsBetween).Methods(http.MethodGet)
}

func (c *TransactionController) postTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.TransactionResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.PostTransaction(r.Context(), req)
	if err != nil {
		writeJSON(w, transactionErrorStatus(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (c *TransactionController) transferFunds(w http.ResponseWriter, r *http.Request) {
	var req models.FundTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[models.FundTransferResponse]("invalid request body", err.Error()))
		return
	}

	response, err := c.service.TransferFunds(r.Context(), req)
	if err != nil {
		writeJSON(w, transactionErrorStatus(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusCreated, response)
}

func (c *TransactionController) recentTransactions(w http.ResponseWriter, r *http.Request) {
	iban := mux.Vars(r)["iban"]

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[[]models.TransactionResponse]("validation failed", "limit must be a number"))
			return
		}
		limit = parsed
	}

	response, err := c.service.RecentTransactions(r.Context(), iban, limit)
	if err != nil {
		writeJSON(w, transactionErrorStatus(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (c *TransactionController) transactionsBetween(w http.ResponseWriter, r *http.Request) {
	iban := mux.Vars(r)["iban"]

	start, err := time.Parse(dateLayout, r.URL.Query().Get("startDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[[]models.TransactionResponse]("validation failed", "startDate must be in YYYY-MM-DD format"))
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("endDate"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, commons.ErrorResponse[[]models.TransactionResponse]("validation failed", "endDate must be in YYYY-MM-DD format"))
		return
	}
	// Make the end date inclusive of the whole day.
	end = end.Add(24*time.Hour - time.Nanosecond)

	response, err := c.service.TransactionsBetween(r.Context(), iban, start, end)
	if err != nil {
		writeJSON(w, transactionErrorStatus(err, response.Message), response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func transactionErrorStatus(err error, message string) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoRecords):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrInvalidTransferType),
		errors.Is(err, domain.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrCurrencyConversion):
		return http.StatusBadGateway
	case message == "validation failed":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
