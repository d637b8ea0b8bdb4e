package memory

import (
	"context"
	"strings"

	"github.com/finadem/core-banking/internal/domain"
)

// ParticipantBankRepository is a static registry of partner banks used
// to label transfer counterparties that are not customer accounts.
type ParticipantBankRepository struct {
	banks []domain.ParticipantBank
}

func NewParticipantBankRepository() *ParticipantBankRepository {
	return &ParticipantBankRepository{
		banks: []domain.ParticipantBank{
			{BankName: "Deutsche Bank", BankCode: "10070000", BIC: "DEUTDEBBXXX"},
			{BankName: "Commerzbank", BankCode: "10040000", BIC: "COBADEFFXXX"},
			{BankName: "ING-DiBa", BankCode: "50010517", BIC: "INGDDEFFXXX"},
			{BankName: "DZ Bank", BankCode: "50060400", BIC: "GENODEFFXXX"},
			{BankName: "UniCredit Bank", BankCode: "70020270", BIC: "HYVEDEMMXXX"},
			{BankName: "Landesbank Baden-Wuerttemberg", BankCode: "60050101", BIC: "SOLADESTXXX"},
			{BankName: "Sparkasse KoelnBonn", BankCode: "37050198", BIC: "COLSDE33XXX"},
			{BankName: "N26 Bank", BankCode: "10011001", BIC: "NTSBDEB1XXX"},
		},
	}
}

func (r *ParticipantBankRepository) GetAll(_ context.Context) ([]domain.ParticipantBank, error) {
	out := make([]domain.ParticipantBank, len(r.banks))
	copy(out, r.banks)
	return out, nil
}

func (r *ParticipantBankRepository) GetByCode(_ context.Context, bankCode string) (domain.ParticipantBank, bool, error) {
	bankCode = strings.TrimSpace(bankCode)
	for _, bank := range r.banks {
		if bank.BankCode == bankCode {
			return bank, true, nil
		}
	}
	return domain.ParticipantBank{}, false, nil
}
