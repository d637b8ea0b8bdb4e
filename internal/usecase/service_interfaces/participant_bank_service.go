package service_interfaces

import (
	"context"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
)

type ParticipantBankService interface {
	GetParticipantBanks(ctx context.Context) (commons.Response[[]models.ParticipantBankResponse], error)
}
