package service_interfaces

import (
	"context"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req models.AccountDataRequest) (commons.Response[models.AccountResponse], error)
	GetAccount(ctx context.Context, iban string) (commons.Response[models.AccountResponse], error)
}
