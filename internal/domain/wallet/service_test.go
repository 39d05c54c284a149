package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

type fakeMaids map[string]bool

func (f fakeMaids) Exists(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:wallet_test_%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{DriverName: "sqlite", DSN: dsn}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&Wallet{}, &Transaction{}, &CVUnlock{}); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

func setupTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(openTestDB(t), fakeMaids{"maid-1": true, "maid-2": true}, 50)
}

func TestGetOrCreateWalletCreatesOnFirstRequest(t *testing.T) {
	svc := setupTestService(t)

	wallet, err := svc.GetOrCreateWallet(context.Background(), 1001)
	if err != nil {
		t.Fatalf("GetOrCreateWallet returned error: %v", err)
	}
	if wallet.Balance != 0 {
		t.Fatalf("expected zero initial balance, got %d", wallet.Balance)
	}

	again, err := svc.GetOrCreateWallet(context.Background(), 1001)
	if err != nil {
		t.Fatalf("GetOrCreateWallet second call returned error: %v", err)
	}
	if wallet.ID != again.ID {
		t.Fatalf("expected same wallet id, got %s and %s", wallet.ID, again.ID)
	}
}

func TestTopUpAndUnlockFlow(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	wallet, topUp, err := svc.TopUp(ctx, 101, 120)
	if err != nil {
		t.Fatalf("TopUp returned error: %v", err)
	}
	if wallet.Balance != 120 {
		t.Fatalf("expected balance 120, got %d", wallet.Balance)
	}
	if topUp.Type != TransactionTypeTopUp {
		t.Fatalf("expected txn type %s, got %s", TransactionTypeTopUp, topUp.Type)
	}

	unlock, charged, err := svc.UnlockCV(ctx, 101, "maid-1")
	if err != nil {
		t.Fatalf("UnlockCV returned error: %v", err)
	}
	if !charged || unlock.Price != 50 {
		t.Fatalf("expected a charged unlock at 50, got charged=%v price=%d", charged, unlock.Price)
	}

	// unlocking again is free
	_, charged, err = svc.UnlockCV(ctx, 101, "maid-1")
	if err != nil {
		t.Fatalf("second UnlockCV returned error: %v", err)
	}
	if charged {
		t.Fatalf("expected second unlock not to charge")
	}

	wallet, err = svc.GetOrCreateWallet(ctx, 101)
	if err != nil {
		t.Fatalf("GetOrCreateWallet returned error: %v", err)
	}
	if wallet.Balance != 70 {
		t.Fatalf("expected balance 70, got %d", wallet.Balance)
	}

	ok, err := svc.IsUnlocked(ctx, 101, "maid-1")
	if err != nil || !ok {
		t.Fatalf("expected maid-1 unlocked, got %v err=%v", ok, err)
	}
	ok, err = svc.IsUnlocked(ctx, 101, "maid-2")
	if err != nil || ok {
		t.Fatalf("expected maid-2 locked, got %v err=%v", ok, err)
	}

	txns, err := svc.ListTransactions(ctx, 101)
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if len(txns) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txns))
	}
}

func TestListTransactionsCreatesEmptyWallet(t *testing.T) {
	svc := setupTestService(t)

	txns, err := svc.ListTransactions(context.Background(), 999)
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected 0 transactions, got %d", len(txns))
	}
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	svc := setupTestService(t)
	_, _, err := svc.TopUp(context.Background(), 102, 0)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestUnlockInsufficientFunds(t *testing.T) {
	svc := setupTestService(t)
	_, _, err := svc.UnlockCV(context.Background(), 104, "maid-1")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	ok, err := svc.IsUnlocked(context.Background(), 104, "maid-1")
	if err != nil || ok {
		t.Fatalf("expected no unlock after failed payment, got %v err=%v", ok, err)
	}
}

func TestUnlockUnknownMaid(t *testing.T) {
	svc := setupTestService(t)
	_, _, err := svc.UnlockCV(context.Background(), 105, "ghost")
	if !errors.Is(err, ErrMaidNotFound) {
		t.Fatalf("expected ErrMaidNotFound, got %v", err)
	}
}

func TestUnlockReturnsGrantInsertedByConcurrentUnlock(t *testing.T) {
	db := openTestDB(t)
	svc := NewService(db, fakeMaids{"maid-1": true}, 50)
	ctx := context.Background()

	// another request has already written the grant; this wallet is empty
	winner := CVUnlock{UserID: 106, MaidID: "maid-1", Price: 50}
	if err := db.Create(&winner).Error; err != nil {
		t.Fatalf("seed unlock: %v", err)
	}

	unlock, charged, err := svc.UnlockCV(ctx, 106, "maid-1")
	if err != nil {
		t.Fatalf("UnlockCV returned error: %v", err)
	}
	if charged {
		t.Fatalf("expected no charge for an existing grant")
	}
	if unlock.ID != winner.ID {
		t.Fatalf("expected grant %d, got %d", winner.ID, unlock.ID)
	}

	txns, err := svc.ListTransactions(ctx, 106)
	if err != nil {
		t.Fatalf("ListTransactions returned error: %v", err)
	}
	if len(txns) != 0 {
		t.Fatalf("expected no transactions, got %d", len(txns))
	}
}

func TestConcurrentUnlocksChargeOnce(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	if _, _, err := svc.TopUp(ctx, 107, 200); err != nil {
		t.Fatalf("TopUp returned error: %v", err)
	}

	const n = 4
	var wg sync.WaitGroup
	charges := make(chan bool, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, charged, err := svc.UnlockCV(ctx, 107, "maid-1")
			if err != nil {
				errs <- err
				return
			}
			charges <- charged
		}()
	}
	wg.Wait()
	close(charges)
	close(errs)

	for err := range errs {
		t.Fatalf("UnlockCV returned error: %v", err)
	}
	paid := 0
	for c := range charges {
		if c {
			paid++
		}
	}
	if paid != 1 {
		t.Fatalf("expected exactly one charged unlock, got %d", paid)
	}

	wallet, err := svc.GetOrCreateWallet(ctx, 107)
	if err != nil {
		t.Fatalf("GetOrCreateWallet returned error: %v", err)
	}
	if wallet.Balance != 150 {
		t.Fatalf("expected balance 150, got %d", wallet.Balance)
	}
}

func TestIsUniqueConstraintError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{gorm.ErrDuplicatedKey, true},
		{&pgconn.PgError{Code: "23505"}, true},
		{&pgconn.PgError{Code: "23503"}, false},
		{errors.New("UNIQUE constraint failed: cv_unlocks.user_id"), true},
		{errors.New("connection reset"), false},
	}
	for _, tc := range cases {
		if got := isUniqueConstraintError(tc.err); got != tc.want {
			t.Fatalf("isUniqueConstraintError(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
