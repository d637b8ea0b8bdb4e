package services

import (
	"context"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/logger"
	"github.com/finadem/core-banking/internal/usecase/service_interfaces"
)

// Verify that ParticipantBankService implements the service interface
var _ service_interfaces.ParticipantBankService = (*ParticipantBankService)(nil)

type ParticipantBankService struct {
	participantBankRepo domain.ParticipantBankRepository
}

func NewParticipantBankService(participantBankRepo domain.ParticipantBankRepository) *ParticipantBankService {
	return &ParticipantBankService{participantBankRepo: participantBankRepo}
}

func (s *ParticipantBankService) GetParticipantBanks(ctx context.Context) (commons.Response[[]models.ParticipantBankResponse], error) {
	banks, err := s.participantBankRepo.GetAll(ctx)
	if err != nil {
		logger.Error("participant bank service get participant banks failed", err, nil)
		return commons.ErrorResponse[[]models.ParticipantBankResponse]("failed to fetch participant banks", "Unable to fetch participant banks right now"), err
	}

	resp := make([]models.ParticipantBankResponse, 0, len(banks))
	for _, bank := range banks {
		resp = append(resp, models.ParticipantBankResponse{
			BankName: bank.BankName,
			BankCode: bank.BankCode,
			BIC:      bank.BIC,
		})
	}

	return commons.SuccessResponse("participant banks fetched successfully", resp), nil
}
