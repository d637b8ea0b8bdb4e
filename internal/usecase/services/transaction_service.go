package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/commons"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/finadem/core-banking/internal/logger"
	"github.com/finadem/core-banking/internal/usecase/service_interfaces"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Verify that TransactionService implements the service interface
var _ service_interfaces.TransactionService = (*TransactionService)(nil)

const (
	defaultHistoryLimit = 10
	maxHistoryLimit     = 100
)

// TransactionService is the posting engine. Every balance change runs
// inside one database transaction together with its ledger entries:
// locked read, validation, balance write, append. Business-rule
// violations are rejected before any write; after the commit begins
// only infrastructure failures can occur and those roll back fully.
type TransactionService struct {
	accountRepo        domain.AccountRepository
	transactionRepo    domain.TransactionRepository
	txRunner           domain.TxRunner
	converter          domain.CurrencyConverter
	publisher          domain.EventPublisher
	participantBanks   domain.ParticipantBankRepository
	settlementCurrency string
}

func NewTransactionService(
	accountRepo domain.AccountRepository,
	transactionRepo domain.TransactionRepository,
	txRunner domain.TxRunner,
	converter domain.CurrencyConverter,
	publisher domain.EventPublisher,
	participantBanks domain.ParticipantBankRepository,
	settlementCurrency string,
) *TransactionService {
	return &TransactionService{
		accountRepo:        accountRepo,
		transactionRepo:    transactionRepo,
		txRunner:           txRunner,
		converter:          converter,
		publisher:          publisher,
		participantBanks:   participantBanks,
		settlementCurrency: strings.ToUpper(strings.TrimSpace(settlementCurrency)),
	}
}

func (s *TransactionService) PostTransaction(ctx context.Context, req models.TransactionRequest) (commons.Response[models.TransactionResponse], error) {
	logger.Info("transaction service post transaction request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.TransactionResponse]("validation failed", err.Error()), err
	}

	customerAccount := strings.TrimSpace(req.CustomerAccountNumber)
	transactingAccount := strings.TrimSpace(req.TransactingAccountNumber)
	transactionType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(req.TransactionType)))
	source := domain.TransactionSource(strings.ToUpper(strings.TrimSpace(req.TransactionSource)))
	remarks := strings.TrimSpace(req.TransactionRemarks)

	converted, err := s.toSettlement(ctx, req.Amount, req.CurrencyType)
	if err != nil {
		logger.Error("transaction service currency conversion failed", err, logger.Fields{
			"customerAccount": customerAccount,
			"currency":        req.CurrencyType,
		})
		return commons.ErrorResponse[models.TransactionResponse]("currency conversion failed", "Unable to convert amount right now"), err
	}

	entry := domain.Transaction{
		Reference:          uuid.New().String(),
		CustomerAccount:    customerAccount,
		TransactingAccount: transactingAccount,
		Amount:             converted.Amount,
		Currency:           converted.Currency,
		Type:               transactionType,
		Source:             source,
		Status:             domain.TransactionStatusSuccess,
		Remarks:            remarks,
	}

	var committed domain.Transaction
	var updated domain.Account

	switch transactionType {
	case domain.TransactionTypeDeposit:
		committed, updated, err = s.deposit(ctx, entry)
	case domain.TransactionTypeWithdrawal:
		committed, updated, err = s.withdraw(ctx, entry)
	default:
		err = domain.ErrInvalidTransferType
	}

	if err != nil {
		return commons.ErrorResponse[models.TransactionResponse](postingFailureMessage(err), err.Error()), err
	}

	s.publishEntries(ctx, committed)

	logger.Info("transaction service post transaction success", logger.Fields{
		"transactionId":   committed.ID,
		"customerAccount": committed.CustomerAccount,
		"type":            committed.Type,
	})

	response := mapTransactionToResponse(committed, updated.Balance)
	return commons.SuccessResponse("transaction successful", response), nil
}

// deposit credits the customer account, provisioning it first when the
// IBAN is unknown.
func (s *TransactionService) deposit(ctx context.Context, entry domain.Transaction) (domain.Transaction, domain.Account, error) {
	_, provisioned, err := s.resolveOrProvision(ctx, entry.CustomerAccount)
	if err != nil {
		return domain.Transaction{}, domain.Account{}, err
	}
	if provisioned {
		logger.Info("transaction service auto-provisioned deposit target", logger.Fields{
			"customerAccount": entry.CustomerAccount,
		})
	}

	var committed domain.Transaction
	var updated domain.Account

	err = s.txRunner.WithinTx(ctx, func(tx *sql.Tx) error {
		var txErr error
		committed, txErr = s.transactionRepo.Append(ctx, tx, entry)
		if txErr != nil {
			return txErr
		}
		updated, txErr = s.accountRepo.ApplyBalanceDelta(ctx, tx, entry.CustomerAccount, entry.Amount)
		return txErr
	})
	if err != nil {
		return domain.Transaction{}, domain.Account{}, postingError(err)
	}

	return committed, updated, nil
}

// withdraw debits the customer account. The sufficient-funds check runs
// under the row lock so concurrent withdrawals serialize and the losers
// fail without writes.
func (s *TransactionService) withdraw(ctx context.Context, entry domain.Transaction) (domain.Transaction, domain.Account, error) {
	if _, found, err := s.accountRepo.GetByIBAN(ctx, entry.CustomerAccount); err != nil {
		return domain.Transaction{}, domain.Account{}, postingError(err)
	} else if !found {
		return domain.Transaction{}, domain.Account{}, domain.ErrAccountNotFound
	}

	var committed domain.Transaction
	var updated domain.Account

	err := s.txRunner.WithinTx(ctx, func(tx *sql.Tx) error {
		account, txErr := s.accountRepo.GetByIBANForUpdate(ctx, tx, entry.CustomerAccount)
		if txErr != nil {
			return txErr
		}
		if account.Balance.Sub(entry.Amount).IsNegative() {
			return domain.ErrInsufficientBalance
		}

		committed, txErr = s.transactionRepo.Append(ctx, tx, entry)
		if txErr != nil {
			return txErr
		}
		updated, txErr = s.accountRepo.ApplyBalanceDelta(ctx, tx, entry.CustomerAccount, entry.Amount.Neg())
		return txErr
	})
	if err != nil {
		return domain.Transaction{}, domain.Account{}, postingError(err)
	}

	return committed, updated, nil
}

func (s *TransactionService) TransferFunds(ctx context.Context, req models.FundTransferRequest) (commons.Response[models.FundTransferResponse], error) {
	logger.Info("transaction service fund transfer request", logger.Fields{
		"payload": logger.SanitizePayload(req),
	})

	if err := req.Validate(); err != nil {
		return commons.ErrorResponse[models.FundTransferResponse]("validation failed", err.Error()), err
	}

	customerAccount := strings.TrimSpace(req.CustomerAccountNumber)
	transactingAccount := strings.TrimSpace(req.TransactingAccountNumber)
	transferType := domain.TransactionType(strings.ToUpper(strings.TrimSpace(req.TransactionType)))
	remarks := strings.TrimSpace(req.TransactionRemarks)

	if customerAccount == transactingAccount {
		err := domain.ErrSelfTransfer
		return commons.ErrorResponse[models.FundTransferResponse]("validation failed", err.Error()), err
	}
	if !transferType.TransferLeg() {
		err := domain.ErrInvalidTransferType
		return commons.ErrorResponse[models.FundTransferResponse]("validation failed", err.Error()), err
	}

	converted, err := s.toSettlement(ctx, req.Amount, req.CurrencyType)
	if err != nil {
		logger.Error("transaction service transfer conversion failed", err, logger.Fields{
			"customerAccount": customerAccount,
			"currency":        req.CurrencyType,
		})
		return commons.ErrorResponse[models.FundTransferResponse]("currency conversion failed", "Unable to convert amount right now"), err
	}

	if _, found, lookupErr := s.accountRepo.GetByIBAN(ctx, customerAccount); lookupErr != nil {
		err := postingError(lookupErr)
		return commons.ErrorResponse[models.FundTransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	} else if !found {
		err := domain.ErrAccountNotFound
		return commons.ErrorResponse[models.FundTransferResponse]("Account not found", err.Error()), err
	}

	_, counterpartyKnown, err := s.accountRepo.GetByIBAN(ctx, transactingAccount)
	if err != nil {
		err = postingError(err)
		return commons.ErrorResponse[models.FundTransferResponse]("failed to process transfer", "Unable to process transfer right now"), err
	}

	reference := uuid.New().String()
	primary := domain.Transaction{
		Reference:          reference,
		CustomerAccount:    customerAccount,
		TransactingAccount: transactingAccount,
		Amount:             converted.Amount,
		Currency:           converted.Currency,
		Type:               transferType,
		Source:             domain.TransactionSourceFundTransfer,
		Status:             domain.TransactionStatusSuccess,
		Remarks:            remarks,
	}
	if !counterpartyKnown {
		primary.BIC = s.lookupBIC(ctx, transactingAccount)
	}

	committed, err := s.postTransfer(ctx, primary, counterpartyKnown)
	if err != nil {
		return commons.ErrorResponse[models.FundTransferResponse](postingFailureMessage(err), err.Error()), err
	}

	s.publishEntries(ctx, committed...)

	logger.Info("transaction service fund transfer success", logger.Fields{
		"reference":       reference,
		"customerAccount": customerAccount,
		"type":            transferType,
		"entries":         len(committed),
	})

	entries := make([]models.TransactionResponse, 0, len(committed))
	for _, entry := range committed {
		entries = append(entries, mapTransactionToResponse(entry, decimal.Decimal{}))
	}

	return commons.SuccessResponse("transfer successful", models.FundTransferResponse{Entries: entries}), nil
}

// postTransfer commits both legs of a transfer as one atomic unit. Rows
// are locked in lexicographic IBAN order so two concurrent transfers
// over the same pair cannot deadlock.
func (s *TransactionService) postTransfer(ctx context.Context, primary domain.Transaction, counterpartyKnown bool) ([]domain.Transaction, error) {
	var committed []domain.Transaction

	err := s.txRunner.WithinTx(ctx, func(tx *sql.Tx) error {
		lockOrder := []string{primary.CustomerAccount}
		if counterpartyKnown {
			lockOrder = append(lockOrder, primary.TransactingAccount)
		}
		sort.Strings(lockOrder)

		locked := make(map[string]domain.Account, len(lockOrder))
		for _, iban := range lockOrder {
			account, txErr := s.accountRepo.GetByIBANForUpdate(ctx, tx, iban)
			if txErr != nil {
				return txErr
			}
			locked[iban] = account
		}

		// Whichever leg loses money must stay non-negative.
		debitedIBAN := primary.CustomerAccount
		if primary.Type == domain.TransactionTypeCredit {
			debitedIBAN = primary.TransactingAccount
		}
		if debited, ok := locked[debitedIBAN]; ok {
			if debited.Balance.Sub(primary.Amount).IsNegative() {
				return domain.ErrInsufficientBalance
			}
		}

		primaryDelta := primary.Amount
		if primary.Type == domain.TransactionTypeDebit {
			primaryDelta = primary.Amount.Neg()
		}

		entry, txErr := s.transactionRepo.Append(ctx, tx, primary)
		if txErr != nil {
			return txErr
		}
		if _, txErr = s.accountRepo.ApplyBalanceDelta(ctx, tx, primary.CustomerAccount, primaryDelta); txErr != nil {
			return txErr
		}
		committed = append(committed, entry)

		if !counterpartyKnown {
			return nil
		}

		mirror := primary
		mirror.BIC = ""
		mirror.CustomerAccount = primary.TransactingAccount
		mirror.TransactingAccount = primary.CustomerAccount
		mirror.Type = primary.Type.Mirror()

		mirrorEntry, txErr := s.transactionRepo.Append(ctx, tx, mirror)
		if txErr != nil {
			return txErr
		}
		if _, txErr = s.accountRepo.ApplyBalanceDelta(ctx, tx, mirror.CustomerAccount, primaryDelta.Neg()); txErr != nil {
			return txErr
		}
		committed = append(committed, mirrorEntry)

		return nil
	})
	if err != nil {
		return nil, postingError(err)
	}

	return committed, nil
}

func (s *TransactionService) RecentTransactions(ctx context.Context, iban string, limit int) (commons.Response[[]models.TransactionResponse], error) {
	iban = strings.TrimSpace(iban)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	transactions, err := s.transactionRepo.RecentByAccount(ctx, iban, limit)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecords) {
			return commons.ErrorResponse[[]models.TransactionResponse]("No records found", err.Error()), err
		}
		logger.Error("transaction service recent transactions failed", err, logger.Fields{
			"customerAccount": iban,
		})
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to fetch transactions", "Unable to fetch transactions right now"), err
	}

	return commons.SuccessResponse("transactions fetched successfully", mapTransactionsToResponses(transactions)), nil
}

func (s *TransactionService) TransactionsBetween(ctx context.Context, iban string, start, end time.Time) (commons.Response[[]models.TransactionResponse], error) {
	iban = strings.TrimSpace(iban)
	if start.After(end) {
		err := domain.ErrInvalidRange
		return commons.ErrorResponse[[]models.TransactionResponse]("validation failed", err.Error()), err
	}

	transactions, err := s.transactionRepo.BetweenByAccount(ctx, iban, start, end)
	if err != nil {
		if errors.Is(err, domain.ErrNoRecords) {
			return commons.ErrorResponse[[]models.TransactionResponse]("No records found", err.Error()), err
		}
		logger.Error("transaction service transactions between failed", err, logger.Fields{
			"customerAccount": iban,
		})
		return commons.ErrorResponse[[]models.TransactionResponse]("failed to fetch transactions", "Unable to fetch transactions right now"), err
	}

	return commons.SuccessResponse("transactions fetched successfully", mapTransactionsToResponses(transactions)), nil
}

// resolveOrProvision looks up the deposit target and creates it when
// unknown. Provisioned accounts start at zero balance with KYC pending
// and the IBAN itself as placeholder holder name.
func (s *TransactionService) resolveOrProvision(ctx context.Context, iban string) (domain.Account, bool, error) {
	account, found, err := s.accountRepo.GetByIBAN(ctx, iban)
	if err != nil {
		return domain.Account{}, false, err
	}
	if found {
		return account, false, nil
	}

	draft := domain.Account{
		CustomerID: newCustomerID(),
		IBAN:       iban,
		HolderName: iban,
		TaxID:      unknownTaxID,
		Balance:    decimal.Zero,
		Currency:   s.settlementCurrency,
		Status:     domain.AccountStatusActiveKYCNotDue,
	}

	created, err := s.accountRepo.Create(ctx, draft)
	if err != nil {
		// A concurrent deposit may have provisioned the same IBAN first.
		if errors.Is(err, domain.ErrDuplicateAccount) {
			existing, found, lookupErr := s.accountRepo.GetByIBAN(ctx, iban)
			if lookupErr == nil && found {
				return existing, false, nil
			}
		}
		return domain.Account{}, false, err
	}

	return created, true, nil
}

func (s *TransactionService) toSettlement(ctx context.Context, amount decimal.Decimal, currency string) (domain.Money, error) {
	from := strings.ToUpper(strings.TrimSpace(currency))

	money := domain.NewMoney(amount, s.settlementCurrency).Rounded()
	if from != s.settlementCurrency {
		converted, err := s.converter.Convert(ctx, amount, from, s.settlementCurrency)
		if err != nil {
			return domain.Money{}, fmt.Errorf("%w: %v", domain.ErrCurrencyConversion, err)
		}
		money = converted.Rounded()
	}

	// Ledger amounts are strictly positive; an amount that rounds away
	// to zero cents cannot be posted.
	if !money.IsPositive() {
		return domain.Money{}, fmt.Errorf("%w: amount rounds to zero in %s", domain.ErrCurrencyConversion, s.settlementCurrency)
	}

	return money, nil
}

// lookupBIC labels an external counterparty using the participant bank
// registry. Best-effort; an unknown bank code just leaves the BIC empty.
func (s *TransactionService) lookupBIC(ctx context.Context, iban string) string {
	if s.participantBanks == nil || len(iban) < 12 {
		return ""
	}

	bank, found, err := s.participantBanks.GetByCode(ctx, iban[4:12])
	if err != nil || !found {
		return ""
	}
	return bank.BIC
}

func (s *TransactionService) publishEntries(ctx context.Context, entries ...domain.Transaction) {
	if s.publisher == nil {
		return
	}

	for _, entry := range entries {
		if err := s.publisher.PublishTransaction(ctx, entry); err != nil {
			logger.Error("transaction service publish entry failed", err, logger.Fields{
				"transactionId": entry.ID,
				"reference":     entry.Reference,
			})
		}
	}
}

func postingError(err error) error {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrNegativeBalance):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrTransactionFailed, err)
	}
}

func postingFailureMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		return "Account not found"
	case errors.Is(err, domain.ErrInsufficientBalance):
		return "Insufficient balance"
	default:
		return "failed to process transaction"
	}
}

func mapTransactionToResponse(t domain.Transaction, balanceAfter decimal.Decimal) models.TransactionResponse {
	response := models.TransactionResponse{
		TransactionID:      t.ID,
		Reference:          t.Reference,
		CustomerAccount:    t.CustomerAccount,
		TransactingAccount: t.TransactingAccount,
		BIC:                t.BIC,
		Amount:             t.Amount.StringFixed(2),
		Currency:           t.Currency,
		Type:               string(t.Type),
		Source:             string(t.Source),
		Status:             string(t.Status),
		Remarks:            t.Remarks,
		Timestamp:          t.Timestamp.Format(time.RFC3339),
	}
	if !balanceAfter.IsZero() || t.Type == domain.TransactionTypeWithdrawal {
		response.BalanceAfter = balanceAfter.StringFixed(2)
	}
	return response
}

func mapTransactionsToResponses(transactions []domain.Transaction) []models.TransactionResponse {
	responses := make([]models.TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		responses = append(responses, mapTransactionToResponse(t, decimal.Decimal{}))
	}
	return responses
}
