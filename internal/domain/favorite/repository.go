package favorite

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository stores favorites. Add and Remove are idempotent.
type Repository interface {
	Add(ctx context.Context, userID int64, maidID string) (fav *Favorite, created bool, err error)
	Remove(ctx context.Context, userID int64, maidID string) (removed bool, err error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Favorite, int64, error)
	IDs(ctx context.Context, userID int64) ([]string, error)
	Exists(ctx context.Context, userID int64, maidID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Add inserts the pair unless it already exists and returns the stored row
// with its maid preloaded.
func (r *repository) Add(ctx context.Context, userID int64, maidID string) (*Favorite, bool, error) {
	fav := &Favorite{UserID: userID, MaidID: maidID}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "maid_id"}},
			DoNothing: true,
		}).
		Create(fav)
	if res.Error != nil {
		return nil, false, res.Error
	}
	created := res.RowsAffected == 1

	var stored Favorite
	err := r.db.WithContext(ctx).
		Preload("Maid").
		Where("user_id = ? AND maid_id = ?", userID, maidID).
		First(&stored).Error
	if err != nil {
		return nil, false, err
	}

	return &stored, created, nil
}

// Remove deletes the pair; removing an absent pair is not an error.
func (r *repository) Remove(ctx context.Context, userID int64, maidID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND maid_id = ?", userID, maidID).
		Delete(&Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ListByUser returns a page of favorites, newest first, and the total count.
func (r *repository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]Favorite, int64, error) {
	var favorites []Favorite
	var total int64

	if err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Maid").
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	if err := q.Find(&favorites).Error; err != nil {
		return nil, 0, err
	}

	return favorites, total, nil
}

// IDs returns every favorited maid ID of the user.
func (r *repository) IDs(ctx context.Context, userID int64) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&Favorite{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("maid_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) Exists(ctx context.Context, userID int64, maidID string) (bool, error) {
	var fav Favorite
	err := r.db.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND maid_id = ?", userID, maidID).
		Take(&fav).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
