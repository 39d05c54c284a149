package favorite

import (
	"time"

	"maidmarket/internal/domain/maid"
)

// Favorite links a customer to a maid they saved. A (user, maid) pair is
// stored at most once.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_maid"`
	MaidID    string    `json:"maid_id" gorm:"type:varchar(36);not null;index;uniqueIndex:idx_user_maid"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Maid *maid.Maid `json:"maid,omitempty" gorm:"foreignKey:MaidID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Favorite) TableName() string {
	return "favorites"
}
