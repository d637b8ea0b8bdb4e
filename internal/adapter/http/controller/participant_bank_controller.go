package controller

import (
	"net/http"

	"github.com/finadem/core-banking/internal/usecase/service_interfaces"
	"github.com/gorilla/mux"
)

type ParticipantBankController struct {
	service service_interfaces.ParticipantBankService
}

func NewParticipantBankController(service service_interfaces.ParticipantBankService) *ParticipantBankController {
	return &ParticipantBankController{service: service}
}

func (c *ParticipantBankController) RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc) {
	sub := router.PathPrefix("/api/v1/banks").Subrouter()
	if authMiddleware != nil {
		sub.Use(authMiddleware)
	}

	sub.HandleFunc("", c.getParticipantBanks).Methods(http.MethodGet)
}

func (c *ParticipantBankController) getParticipantBanks(w http.ResponseWriter, r *http.Request) {
	response, err := c.service.GetParticipantBanks(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, response)
		return
	}

	writeJSON(w, http.StatusOK, response)
}
