package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient balance")
	ErrMaidNotFound      = errors.New("maid not found")
)

// MaidChecker confirms a maid exists before its CV is sold.
type MaidChecker interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type Service struct {
	db          *gorm.DB
	maids       MaidChecker
	unlockPrice int64
}

func NewService(db *gorm.DB, maids MaidChecker, unlockPrice int64) *Service {
	return &Service{db: db, maids: maids, unlockPrice: unlockPrice}
}

func (s *Service) UnlockPrice() int64 {
	return s.unlockPrice
}

func (s *Service) GetOrCreateWallet(ctx context.Context, userID int64) (*Wallet, error) {
	wallet, err := s.getWalletByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &Wallet{UserID: userID, Balance: 0}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.getWalletByUserID(ctx, userID)
		}
		return nil, err
	}
	return wallet, nil
}

// TopUp credits amount to the user's wallet.
func (s *Service) TopUp(ctx context.Context, userID int64, amount int64) (*Wallet, *Transaction, error) {
	if amount <= 0 {
		return nil, nil, ErrInvalidAmount
	}

	var wallet Wallet
	var txn Transaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := getOrCreateWalletForUpdate(tx, userID, &wallet); err != nil {
			return err
		}

		wallet.Balance += amount
		if err := tx.Model(&Wallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error; err != nil {
			return err
		}

		txn = Transaction{WalletID: wallet.ID, Amount: amount, Type: TransactionTypeTopUp}
		return tx.Create(&txn).Error
	})
	if err != nil {
		return nil, nil, err
	}

	return &wallet, &txn, nil
}

// UnlockCV charges the unlock price once per user and maid. Unlocking an
// already unlocked CV returns the existing grant and charges nothing.
func (s *Service) UnlockCV(ctx context.Context, userID int64, maidID string) (*CVUnlock, bool, error) {
	exists, err := s.maids.Exists(ctx, maidID)
	if err != nil {
		return nil, false, err
	}
	if !exists {
		return nil, false, ErrMaidNotFound
	}

	unlock := CVUnlock{UserID: userID, MaidID: maidID, Price: s.unlockPrice}

	// The grant row is inserted first; the unique index on user and maid
	// decides which of two concurrent unlocks pays.
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&unlock).Error; err != nil {
			return err
		}

		var wallet Wallet
		if err := getOrCreateWalletForUpdate(tx, userID, &wallet); err != nil {
			return err
		}
		if wallet.Balance < s.unlockPrice {
			return ErrInsufficientFunds
		}

		wallet.Balance -= s.unlockPrice
		if err := tx.Model(&Wallet{}).Where("id = ?", wallet.ID).Update("balance", wallet.Balance).Error; err != nil {
			return err
		}

		txn := Transaction{WalletID: wallet.ID, Amount: s.unlockPrice, Type: TransactionTypeUnlock, MaidID: maidID}
		return tx.Create(&txn).Error
	})
	if err == nil {
		return &unlock, true, nil
	}
	if !isUniqueConstraintError(err) {
		return nil, false, err
	}

	var existing CVUnlock
	if err := s.db.WithContext(ctx).Where("user_id = ? AND maid_id = ?", userID, maidID).First(&existing).Error; err != nil {
		return nil, false, err
	}
	return &existing, false, nil
}

// IsUnlocked reports whether userID has unlocked maidID's CV.
func (s *Service) IsUnlocked(ctx context.Context, userID int64, maidID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&CVUnlock{}).
		Where("user_id = ? AND maid_id = ?", userID, maidID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Service) ListTransactions(ctx context.Context, userID int64) ([]Transaction, error) {
	wallet, err := s.GetOrCreateWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	txns := []Transaction{}
	if err := s.db.WithContext(ctx).Where("wallet_id = ?", wallet.ID).Order("created_at desc").Find(&txns).Error; err != nil {
		return nil, err
	}

	return txns, nil
}

func (s *Service) getWalletByUserID(ctx context.Context, userID int64) (*Wallet, error) {
	var wallet Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func getOrCreateWalletForUpdate(tx *gorm.DB, userID int64, wallet *Wallet) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(wallet).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		*wallet = Wallet{UserID: userID, Balance: 0}
		if err := tx.Create(wallet).Error; err != nil {
			if isUniqueConstraintError(err) {
				return tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(wallet).Error
			}
			return err
		}
	}
	return nil
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
