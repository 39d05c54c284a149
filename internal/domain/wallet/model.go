package wallet

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TransactionTypeTopUp  = "TOPUP"
	TransactionTypeUnlock = "UNLOCK"
)

// Wallet holds a customer's prepaid balance, in whole currency units.
type Wallet struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	UserID  int64     `json:"user_id" gorm:"not null;uniqueIndex"`
	Balance int64     `json:"balance" gorm:"not null;default:0"`
}

func (Wallet) TableName() string {
	return "wallets"
}

func (w *Wallet) BeforeCreate(_ *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Transaction records one balance movement.
type Transaction struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	WalletID  uuid.UUID `json:"wallet_id" gorm:"type:uuid;not null;index"`
	Amount    int64     `json:"amount" gorm:"not null"`
	Type      string    `json:"type" gorm:"type:varchar(16);not null;index;check:type IN ('TOPUP','UNLOCK')"`
	MaidID    string    `json:"maid_id,omitempty" gorm:"type:varchar(36)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Wallet *Wallet `json:"-" gorm:"foreignKey:WalletID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (Transaction) TableName() string {
	return "wallet_transactions"
}

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// CVUnlock grants a customer permanent access to a maid's CV.
type CVUnlock struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;uniqueIndex:idx_unlock_user_maid"`
	MaidID    string    `json:"maid_id" gorm:"type:varchar(36);not null;uniqueIndex:idx_unlock_user_maid"`
	Price     int64     `json:"price" gorm:"not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (CVUnlock) TableName() string {
	return "cv_unlocks"
}
