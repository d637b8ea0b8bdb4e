package router

import "github.com/gorilla/mux"

type AccountRouteRegistrar interface {
	RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc)
}

type TransactionRouteRegistrar interface {
	RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc)
}

type ParticipantBankRouteRegistrar interface {
	RegisterRoutes(router *mux.Router, authMiddleware mux.MiddlewareFunc)
}

func New(
	accountController AccountRouteRegistrar,
	transactionController TransactionRouteRegistrar,
	participantBankController ParticipantBankRouteRegistrar,
	authMiddleware mux.MiddlewareFunc,
) *mux.Router {
	router := mux.NewRouter()

	if accountController != nil {
		accountController.RegisterRoutes(router, authMiddleware)
	}
	if transactionController != nil {
		transactionController.RegisterRoutes(router, authMiddleware)
	}
	if participantBankController != nil {
		participantBankController.RegisterRoutes(router, authMiddleware)
	}

	return router
}
