package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finadem/core-banking/internal/adapter/http/models"
	"github.com/finadem/core-banking/internal/adapter/repository/memory"
	"github.com/finadem/core-banking/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	aliceIBAN = "DE02100100100006820101"
	bobIBAN   = "DE02120300000000202051"
	// Bank code 50010517 is ING-DiBa in the participant registry.
	externalIBAN = "DE44500105175407324931"
)

func newTestService(accounts *fakeAccountRepo, ledger *fakeTransactionRepo, converter domain.CurrencyConverter, publisher domain.EventPublisher) *TransactionService {
	return NewTransactionService(
		accounts,
		ledger,
		&fakeTxRunner{},
		converter,
		publisher,
		memory.NewParticipantBankRepository(),
		"EUR",
	)
}

var seededCustomerID atomic.Int64

func seedAccount(accounts *fakeAccountRepo, iban string, balance string) {
	accounts.seed(domain.Account{
		CustomerID: 100000000 + seededCustomerID.Add(1),
		IBAN:       iban,
		HolderName: "Seeded Holder",
		TaxID:      "DE123456789",
		Balance:    decimal.RequireFromString(balance),
		Currency:   "EUR",
		Status:     domain.AccountStatusActive,
	})
}

func depositRequest(iban, amount, currency string) models.TransactionRequest {
	return models.TransactionRequest{
		TransactingAccountNumber: bobIBAN,
		CustomerAccountNumber:    iban,
		Amount:                   decimal.RequireFromString(amount),
		CurrencyType:             currency,
		TransactionType:          "DEPOSIT",
		TransactionSource:        "BANK_COUNTER",
	}
}

func withdrawalRequest(iban, amount string) models.TransactionRequest {
	return models.TransactionRequest{
		TransactingAccountNumber: iban,
		CustomerAccountNumber:    iban,
		Amount:                   decimal.RequireFromString(amount),
		CurrencyType:             "EUR",
		TransactionType:          "WITHDRAWAL",
		TransactionSource:        "ATM",
	}
}

func TestPostTransactionDepositProvisionsUnknownAccount(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	publisher := &fakePublisher{}
	service := newTestService(accounts, ledger, &fakeConverter{}, publisher)

	response, err := service.PostTransaction(context.Background(), depositRequest(aliceIBAN, "500.00", "EUR"))
	require.NoError(t, err)
	require.True(t, response.Success)
	require.NotNil(t, response.Data)

	assert.Equal(t, "500.00", response.Data.Amount)
	assert.Equal(t, "500.00", response.Data.BalanceAfter)
	assert.Equal(t, "DEPOSIT", response.Data.Type)
	assert.Equal(t, "SUCCESS", response.Data.Status)

	account, found, err := accounts.GetByIBAN(context.Background(), aliceIBAN)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.AccountStatusActiveKYCNotDue, account.Status)
	assert.Equal(t, aliceIBAN, account.HolderName)
	assert.Equal(t, "Unknown-", account.TaxID)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("500.00")))

	require.Len(t, ledger.all(), 1)
	assert.Equal(t, 1, publisher.count())
}

func TestPostTransactionDepositAddsToExistingBalance(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "100.00")

	response, err := service.PostTransaction(context.Background(), depositRequest(aliceIBAN, "25.50", "EUR"))
	require.NoError(t, err)
	assert.Equal(t, "125.50", response.Data.BalanceAfter)

	account, _, _ := accounts.GetByIBAN(context.Background(), aliceIBAN)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.True(t, account.Balance.Equal(decimal.RequireFromString("125.50")))
}

func TestPostTransactionWithdrawalInsufficientBalance(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "50.00")

	response, err := service.PostTransaction(context.Background(), withdrawalRequest(aliceIBAN, "80.00"))
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)
	assert.False(t, response.Success)
	assert.Equal(t, "Insufficient balance", response.Message)

	// The failed attempt must leave no trace.
	assert.True(t, accounts.balance(aliceIBAN).Equal(decimal.RequireFromString("50.00")))
	assert.Empty(t, ledger.all())
}

func TestPostTransactionWithdrawalUnknownAccount(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)

	response, err := service.PostTransaction(context.Background(), withdrawalRequest(aliceIBAN, "10.00"))
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, "Account not found", response.Message)
	assert.Empty(t, ledger.all())
}

func TestPostTransactionWithdrawalDebitsBalance(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	publisher := &fakePublisher{}
	service := newTestService(accounts, ledger, &fakeConverter{}, publisher)
	seedAccount(accounts, aliceIBAN, "200.00")

	response, err := service.PostTransaction(context.Background(), withdrawalRequest(aliceIBAN, "75.25"))
	require.NoError(t, err)
	assert.Equal(t, "124.75", response.Data.BalanceAfter)
	assert.Equal(t, "WITHDRAWAL", response.Data.Type)

	require.Len(t, ledger.all(), 1)
	assert.Equal(t, 1, publisher.count())
}

func TestPostTransactionWithdrawalOfFullBalance(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "100.00")

	// Draining the account exactly must succeed; zero is not negative.
	response, err := service.PostTransaction(context.Background(), withdrawalRequest(aliceIBAN, "100.00"))
	require.NoError(t, err)
	require.True(t, response.Success)
	assert.Equal(t, "0.00", response.Data.BalanceAfter)

	assert.True(t, accounts.balance(aliceIBAN).IsZero())
	require.Len(t, ledger.all(), 1)
}

func TestPostTransactionConvertsToSettlementCurrency(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	converter := &fakeConverter{rates: map[string]decimal.Decimal{
		"USD:EUR": decimal.RequireFromString("0.92"),
	}}
	service := newTestService(accounts, ledger, converter, nil)

	response, err := service.PostTransaction(context.Background(), depositRequest(aliceIBAN, "100.00", "USD"))
	require.NoError(t, err)

	assert.Equal(t, "92.00", response.Data.Amount)
	assert.Equal(t, "EUR", response.Data.Currency)
	assert.True(t, accounts.balance(aliceIBAN).Equal(decimal.RequireFromString("92.00")))

	entries := ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "EUR", entries[0].Currency)
}

func TestPostTransactionRejectsAmountRoundingToZero(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	converter := &fakeConverter{rates: map[string]decimal.Decimal{
		"USD:EUR": decimal.RequireFromString("0.0001"),
	}}
	service := newTestService(accounts, ledger, converter, nil)

	// 10.00 USD at a micro rate converts to 0.001 EUR, which rounds to
	// zero cents and cannot be posted.
	_, err := service.PostTransaction(context.Background(), depositRequest(aliceIBAN, "10.00", "USD"))
	require.ErrorIs(t, err, domain.ErrCurrencyConversion)

	assert.Empty(t, ledger.all())
	_, found, _ := accounts.GetByIBAN(context.Background(), aliceIBAN)
	assert.False(t, found)
}

func TestPostTransactionConversionFailure(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	converter := &fakeConverter{err: domain.ErrRateUnavailable}
	service := newTestService(accounts, ledger, converter, nil)

	response, err := service.PostTransaction(context.Background(), depositRequest(aliceIBAN, "100.00", "USD"))
	require.ErrorIs(t, err, domain.ErrCurrencyConversion)
	assert.Equal(t, "currency conversion failed", response.Message)
	assert.Empty(t, ledger.all())
}

func TestPostTransactionValidationFailure(t *testing.T) {
	service := newTestService(newFakeAccountRepo(), newFakeTransactionRepo(), &fakeConverter{}, nil)

	req := depositRequest(aliceIBAN, "100.00", "EUR")
	req.TransactionType = "CREDIT"

	response, err := service.PostTransaction(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, "validation failed", response.Message)
}

func TestTransferFundsDebitMovesMoneyBetweenAccounts(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	publisher := &fakePublisher{}
	service := newTestService(accounts, ledger, &fakeConverter{}, publisher)
	seedAccount(accounts, aliceIBAN, "800.00")
	seedAccount(accounts, bobIBAN, "0.00")

	req := models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: bobIBAN,
		Amount:                   decimal.RequireFromString("400.00"),
		CurrencyType:             "EUR",
		TransactionType:          "DEBIT",
		TransactionRemarks:       "rent",
	}

	response, err := service.TransferFunds(context.Background(), req)
	require.NoError(t, err)
	require.True(t, response.Success)
	require.NotNil(t, response.Data)
	require.Len(t, response.Data.Entries, 2)

	assert.True(t, accounts.balance(aliceIBAN).Equal(decimal.RequireFromString("400.00")))
	assert.True(t, accounts.balance(bobIBAN).Equal(decimal.RequireFromString("400.00")))

	entries := ledger.all()
	require.Len(t, entries, 2)

	primary, mirror := entries[0], entries[1]
	assert.Equal(t, domain.TransactionTypeDebit, primary.Type)
	assert.Equal(t, aliceIBAN, primary.CustomerAccount)
	assert.Equal(t, bobIBAN, primary.TransactingAccount)
	assert.Equal(t, domain.TransactionTypeCredit, mirror.Type)
	assert.Equal(t, bobIBAN, mirror.CustomerAccount)
	assert.Equal(t, aliceIBAN, mirror.TransactingAccount)

	// Both legs share one reference and both amounts stay positive.
	assert.Equal(t, primary.Reference, mirror.Reference)
	assert.True(t, primary.Amount.IsPositive())
	assert.True(t, mirror.Amount.IsPositive())

	assert.Equal(t, 2, publisher.count())
}

func TestTransferFundsCreditChecksCounterpartyFunds(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "0.00")
	seedAccount(accounts, bobIBAN, "30.00")

	req := models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: bobIBAN,
		Amount:                   decimal.RequireFromString("100.00"),
		CurrencyType:             "EUR",
		TransactionType:          "CREDIT",
	}

	_, err := service.TransferFunds(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	assert.True(t, accounts.balance(aliceIBAN).IsZero())
	assert.True(t, accounts.balance(bobIBAN).Equal(decimal.RequireFromString("30.00")))
	assert.Empty(t, ledger.all())
}

func TestTransferFundsSelfTransferRejected(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "500.00")

	req := models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: aliceIBAN,
		Amount:                   decimal.RequireFromString("50.00"),
		CurrencyType:             "EUR",
		TransactionType:          "DEBIT",
	}

	_, err := service.TransferFunds(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrSelfTransfer)

	assert.True(t, accounts.balance(aliceIBAN).Equal(decimal.RequireFromString("500.00")))
	assert.Empty(t, ledger.all())
}

func TestTransferFundsRejectsNonTransferTypes(t *testing.T) {
	accounts := newFakeAccountRepo()
	service := newTestService(accounts, newFakeTransactionRepo(), &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "500.00")

	req := models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: bobIBAN,
		Amount:                   decimal.RequireFromString("50.00"),
		CurrencyType:             "EUR",
		TransactionType:          "DEPOSIT",
	}

	_, err := service.TransferFunds(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidTransferType)
}

func TestTransferFundsExternalCounterpartyGetsSingleLegWithBIC(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "300.00")

	req := models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: externalIBAN,
		Amount:                   decimal.RequireFromString("120.00"),
		CurrencyType:             "EUR",
		TransactionType:          "DEBIT",
	}

	response, err := service.TransferFunds(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, response.Data.Entries, 1)

	entries := ledger.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "INGDDEFFXXX", entries[0].BIC)
	assert.True(t, accounts.balance(aliceIBAN).Equal(decimal.RequireFromString("180.00")))

	// The external IBAN must not be provisioned as a customer account.
	_, found, _ := accounts.GetByIBAN(context.Background(), externalIBAN)
	assert.False(t, found)
}

func TestTransferFundsUnknownNamedAccount(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)

	req := models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: bobIBAN,
		Amount:                   decimal.RequireFromString("50.00"),
		CurrencyType:             "EUR",
		TransactionType:          "DEBIT",
	}

	_, err := service.TransferFunds(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Empty(t, ledger.all())
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "100.00")

	const workers = 20
	withdrawal := withdrawalRequest(aliceIBAN, "30.00")

	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.PostTransaction(context.Background(), withdrawal)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, domain.ErrInsufficientBalance)
			rejected++
		}
	}

	// Only three withdrawals of 30.00 fit into 100.00.
	assert.Equal(t, 3, succeeded)
	assert.Equal(t, workers-3, rejected)
	assert.True(t, accounts.balance(aliceIBAN).Equal(decimal.RequireFromString("10.00")))
	assert.Len(t, ledger.all(), 3)
}

func TestLedgerReplayMatchesBalances(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "0.00")
	seedAccount(accounts, bobIBAN, "0.00")

	ctx := context.Background()
	_, err := service.PostTransaction(ctx, depositRequest(aliceIBAN, "1000.00", "EUR"))
	require.NoError(t, err)
	_, err = service.PostTransaction(ctx, withdrawalRequest(aliceIBAN, "150.00"))
	require.NoError(t, err)
	_, err = service.TransferFunds(ctx, models.FundTransferRequest{
		CustomerAccountNumber:    aliceIBAN,
		TransactingAccountNumber: bobIBAN,
		Amount:                   decimal.RequireFromString("275.00"),
		CurrencyType:             "EUR",
		TransactionType:          "DEBIT",
	})
	require.NoError(t, err)

	replayed := map[string]decimal.Decimal{
		aliceIBAN: decimal.Zero,
		bobIBAN:   decimal.Zero,
	}
	for _, entry := range ledger.all() {
		current := replayed[entry.CustomerAccount]
		switch entry.Type {
		case domain.TransactionTypeDeposit, domain.TransactionTypeCredit:
			replayed[entry.CustomerAccount] = current.Add(entry.Amount)
		case domain.TransactionTypeWithdrawal, domain.TransactionTypeDebit:
			replayed[entry.CustomerAccount] = current.Sub(entry.Amount)
		}
	}

	for iban, expected := range replayed {
		assert.True(t, accounts.balance(iban).Equal(expected), "replayed balance mismatch for %s", iban)
		assert.False(t, accounts.balance(iban).IsNegative())
	}
}

func TestRecentTransactions(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "0.00")

	ctx := context.Background()
	for i := 0; i < 15; i++ {
		_, err := service.PostTransaction(ctx, depositRequest(aliceIBAN, "10.00", "EUR"))
		require.NoError(t, err)
	}

	response, err := service.RecentTransactions(ctx, aliceIBAN, 0)
	require.NoError(t, err)
	require.NotNil(t, response.Data)
	assert.Len(t, *response.Data, defaultHistoryLimit)

	response, err = service.RecentTransactions(ctx, aliceIBAN, 5)
	require.NoError(t, err)
	assert.Len(t, *response.Data, 5)
}

func TestRecentTransactionsNoRecords(t *testing.T) {
	service := newTestService(newFakeAccountRepo(), newFakeTransactionRepo(), &fakeConverter{}, nil)

	response, err := service.RecentTransactions(context.Background(), aliceIBAN, 10)
	require.ErrorIs(t, err, domain.ErrNoRecords)
	assert.Equal(t, "No records found", response.Message)
}

func TestTransactionsBetweenInvalidRange(t *testing.T) {
	service := newTestService(newFakeAccountRepo(), newFakeTransactionRepo(), &fakeConverter{}, nil)

	start := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := service.TransactionsBetween(context.Background(), aliceIBAN, start, end)
	require.ErrorIs(t, err, domain.ErrInvalidRange)
}

func TestTransactionsBetweenReturnsRangeEntries(t *testing.T) {
	accounts := newFakeAccountRepo()
	ledger := newFakeTransactionRepo()
	service := newTestService(accounts, ledger, &fakeConverter{}, nil)
	seedAccount(accounts, aliceIBAN, "0.00")

	ctx := context.Background()
	_, err := service.PostTransaction(ctx, depositRequest(aliceIBAN, "40.00", "EUR"))
	require.NoError(t, err)

	now := time.Now()
	response, err := service.TransactionsBetween(ctx, aliceIBAN, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, response.Data)
	assert.Len(t, *response.Data, 1)
}
