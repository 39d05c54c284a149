package database

import (
	"fmt"

	"gorm.io/gorm"

	"maidmarket/internal/domain/favorite"
	"maidmarket/internal/domain/maid"
	"maidmarket/internal/domain/wallet"
)

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	models := []any{
		&maid.Maid{},
		&favorite.Favorite{},
		&wallet.Wallet{},
		&wallet.Transaction{},
		&wallet.CVUnlock{},
	}
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}
