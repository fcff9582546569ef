package repository

import (
	"context"

	"github.com/smallbiznis/tourbill/internal/guide/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, db *gorm.DB, guide *domain.Guide) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO guides (id, name, phone, active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		guide.ID,
		guide.Name,
		guide.Phone,
		guide.Active,
		guide.CreatedAt,
		guide.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id int64) (*domain.Guide, error) {
	var guide domain.Guide
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, phone, active, created_at, updated_at
		 FROM guides WHERE id = ?`,
		id,
	).Scan(&guide).Error
	if err != nil {
		return nil, err
	}
	if guide.ID == 0 {
		return nil, nil
	}
	return &guide, nil
}

func (r *repo) FindByIDs(ctx context.Context, db *gorm.DB, ids []int64) ([]domain.Guide, error) {
	if len(ids) == 0 {
		return []domain.Guide{}, nil
	}
	var items []domain.Guide
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, phone, active, created_at, updated_at
		 FROM guides WHERE id IN ?`,
		ids,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListRequest) ([]domain.Guide, error) {
	var items []domain.Guide
	stmt := db.WithContext(ctx).Model(&domain.Guide{})
	if filter.Active != nil {
		stmt = stmt.Where("active = ?", *filter.Active)
	}
	err := stmt.Order("created_at asc, id asc").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, guide *domain.Guide) error {
	return db.WithContext(ctx).Exec(
		`UPDATE guides SET name = ?, phone = ?, active = ?, updated_at = ?
		 WHERE id = ?`,
		guide.Name,
		guide.Phone,
		guide.Active,
		guide.UpdatedAt,
		guide.ID,
	).Error
}
