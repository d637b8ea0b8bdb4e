package service_interfaces

import (
	"context"
	"time"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
)

type TransactionService interface {
	PostTransaction(ctx context.Context, req models.TransactionRequest) (commons.Response[models.TransactionResponse], error)
	TransferFunds(ctx context.Context, req models.FundTransferRequest) (commons.Response[models.FundTransferResponse], error)
	RecentTransactions(ctx context.Context, iban string, limit int) (commons.Response[[]models.TransactionResponse], error)
	TransactionsBetween(ctx context.Context, iban string, start, end time.Time) (commons.Response[[]models.TransactionResponse], error)
}
