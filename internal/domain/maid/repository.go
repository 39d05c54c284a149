package maid

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Filters narrows a maid listing.
type Filters struct {
	Nationality   string
	Search        string
	AvailableOnly bool
	Limit         int
	Offset        int
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns maids matching f, newest first, with the total before paging.
func (r *Repository) List(ctx context.Context, f Filters) ([]Maid, int64, error) {
	var maids []Maid
	var total int64

	q := r.db.WithContext(ctx).Model(&Maid{})

	if f.Nationality != "" {
		q = q.Where("LOWER(nationality) = ?", strings.ToLower(f.Nationality))
	}
	if f.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
	}
	if f.AvailableOnly {
		q = q.Where("available = ?", true)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Order("created_at DESC").Order("id")
	if f.Limit > 0 {
		q = q.Limit(f.Limit).Offset(f.Offset)
	}

	if err := q.Find(&maids).Error; err != nil {
		return nil, 0, err
	}

	return maids, total, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Maid, error) {
	var m Maid
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *Repository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Maid{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) Create(ctx context.Context, m *Maid) error {
	return r.db.WithContext(ctx).Create(m).Error
}
