package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gopher-classifieds/internal/model"
)

type PostingRepository struct {
	db *gorm.DB
}

func NewPostingRepository(db *gorm.DB) *PostingRepository {
	return &PostingRepository{db: db}
}

func (r *PostingRepository) Create(ctx context.Context, posting *model.Posting) error {
	if err := r.db.WithContext(ctx).Create(posting).Error; err != nil {
		return fmt.Errorf("create posting failed: %w", err)
	}
	return nil
}

func (r *PostingRepository) GetByID(ctx context.Context, id uint) (*model.Posting, error) {
	var posting model.Posting
	if err := r.db.WithContext(ctx).Preload("Owner").First(&posting, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get posting failed: %w", err)
	}
	return &posting, nil
}

// Find evaluates q and returns the requested slice together with the number
// of rows matching the predicates.
func (r *PostingRepository) Find(ctx context.Context, q PostingQuery) ([]model.Posting, int64, error) {
	db := r.db.WithContext(ctx)

	var total int64
	if err := q.filter(db.Model(&model.Posting{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count postings failed: %w", err)
	}

	postings := []model.Posting{}
	if total == 0 || int64(q.offset) >= total {
		return postings, total, nil
	}
	if err := q.page(q.filter(db.Model(&model.Posting{}))).Find(&postings).Error; err != nil {
		return nil, 0, fmt.Errorf("list postings failed: %w", err)
	}
	return postings, total, nil
}

// UpdateStatus applies a moderation decision and reports whether a row changed.
func (r *PostingRepository) UpdateStatus(ctx context.Context, id uint, status int) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&model.Posting{}).Where("id = ?", id).Update("status", status)
	if tx.Error != nil {
		return false, fmt.Errorf("update posting status failed: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}
