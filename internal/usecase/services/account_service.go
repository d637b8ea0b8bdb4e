package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand"
	"strings"
	"time"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/logger"
	"github.com/finadem/core-banking/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

// Verify that AccountService implements the service interface
var _ service_interfaces.AccountService = (*AccountService)(nil)

const unknownTaxID = "Unknown-"
const customerIDDigits = 9
const maxCreateAttempts = 5

type AccountService struct {
	accountRepo        domain.AccountRepository
	settlementCurrency string
	ibanCountryCode    string
	ibanBankCode       string
}

func NewAccountService(accountRepo domain.AccountRepository, settlementCurrency, ibanCountryCode, ibanBankCode string) *AccountService {
	return &AccountService{
		accountRepo:        accountRepo,
		settlementCurrency: strings.ToUpper(strings.TrimSpace(settlementCurrency)),
		ibanCountryCode:    strings.ToUpper(strings.TrimSpace(ibanCountryCode)),
		ibanBankCode:       strings.TrimSpace(ibanBankCode),
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req models.AccountDataRequest) (commons.Response[models.AccountResponse], error) {
	logger.Info("account service create account request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		logger.Error("account service create account validation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	balance := decimal.Zero
	if req.InitialBalance != nil {
		balance = req.InitialBalance.Round(2)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = s.settlementCurrency
	}

	status := domain.AccountStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if status == "" {
		status = domain.AccountStatusActive
	}

	taxID := strings.TrimSpace(req.TaxID)
	if taxID == "" {
		taxID = unknownTaxID
	}

	customerID, err := s.uniqueCustomerID(ctx)
	if err != nil {
		logger.Error("account service customer id generation failed", err, nil)
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	draft := domain.Account{
		CustomerID: customerID,
		HolderName: strings.TrimSpace(req.AccountHolderName),
		TaxID:      taxID,
		Balance:    balance,
		Currency:   currency,
		Status:     status,
	}

	requestedIBAN := strings.TrimSpace(req.IBAN)

	var created domain.Account
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		draft.IBAN = requestedIBAN
		if draft.IBAN == "" {
			draft.IBAN = generateIBAN(s.ibanCountryCode, s.ibanBankCode)
		}

		created, err = s.accountRepo.Create(ctx, draft)
		if err == nil {
			break
		}
		// Regenerate only when we picked the IBAN ourselves; a caller-supplied
		// collision is a real duplicate.
		if !errors.Is(err, domain.ErrDuplicateAccount) || requestedIBAN != "" {
			break
		}
	}
	if err != nil {
		logger.Error("account service create account repository failed", err, logger.Fields{
			"customerId": customerID,
		})
		if errors.Is(err, domain.ErrDuplicateAccount) {
			return commons.ErrorResponse[models.AccountResponse]("Account already exists", err.Error()), err
		}
		return commons.ErrorResponse[models.AccountResponse]("failed to create account", "Unable to create account right now"), err
	}

	logger.Info("account service create account success", logger.Fields{
		"customerId": created.CustomerID,
		"iban":       created.IBAN,
	})

	return commons.SuccessResponse("account created successfully", mapAccountToResponse(created)), nil
}

func (s *AccountService) GetAccount(ctx context.Context, iban string) (commons.Response[models.AccountResponse], error) {
	iban = strings.TrimSpace(iban)
	if iban == "" {
		err := fmt.Errorf("iban is required")
		return commons.ErrorResponse[models.AccountResponse]("validation failed", err.Error()), err
	}

	account, found, err := s.accountRepo.GetByIBAN(ctx, iban)
	if err != nil {
		logger.Error("account service get account failed", err, logger.Fields{
			"iban": iban,
		})
		return commons.ErrorResponse[models.AccountResponse]("failed to get account", "Unable to fetch account right now"), err
	}
	if !found {
		err := domain.ErrAccountNotFound
		return commons.ErrorResponse[models.AccountResponse]("Account not found", err.Error()), err
	}

	return commons.SuccessResponse("account fetched successfully", mapAccountToResponse(account)), nil
}

func (s *AccountService) uniqueCustomerID(ctx context.Context) (int64, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		candidate := newCustomerID()
		exists, err := s.accountRepo.ExistsByCustomerID(ctx, candidate)
		if err != nil {
			return 0, err
		}
		if !exists {
			return candidate, nil
		}
	}
	return 0, fmt.Errorf("could not allocate a unique customer id")
}

func newCustomerID() int64 {
	lower := int64(1)
	for i := 1; i < customerIDDigits; i++ {
		lower *= 10
	}
	return lower + rand.Int63n(lower*9)
}

// generateIBAN builds an IBAN from the configured country and bank code
// with a random account part and mod-97 check digits.
func generateIBAN(countryCode, bankCode string) string {
	accountPart := fmt.Sprintf("%010d", rand.Int63n(10_000_000_000))
	bban := bankCode + accountPart
	check := ibanCheckDigits(countryCode, bban)
	return countryCode + check + bban
}

// ibanCheckDigits computes the two ISO 13616 check digits for the given
// country code and BBAN.
func ibanCheckDigits(countryCode, bban string) string {
	rearranged := bban + countryCode + "00"

	var digits strings.Builder
	for _, ch := range rearranged {
		switch {
		case ch >= '0' && ch <= '9':
			digits.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			fmt.Fprintf(&digits, "%d", ch-'A'+10)
		}
	}

	numeric := new(big.Int)
	numeric.SetString(digits.String(), 10)
	remainder := new(big.Int).Mod(numeric, big.NewInt(97))

	return fmt.Sprintf("%02d", 98-remainder.Int64())
}

func mapAccountToResponse(account domain.Account) models.AccountResponse {
	return models.AccountResponse{
		CustomerID:        account.CustomerID,
		IBAN:              account.IBAN,
		AccountHolderName: account.HolderName,
		Balance:           account.Balance.StringFixed(2),
		Currency:          account.Currency,
		Status:            string(account.Status),
		CreatedAt:         account.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         account.UpdatedAt.Format(time.RFC3339),
	}
}
