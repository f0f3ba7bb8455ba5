package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jobboard/internal/domain/model"
	domainrepo "jobboard/internal/repository"
)

type jobGormRepository struct {
	db *gorm.DB
}

// DI
func NewJobGormRepository(db *gorm.DB) domainrepo.JobRepository {
	return &jobGormRepository{db: db}
}

func (r *jobGormRepository) Create(ctx context.Context, job *model.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return err
	}
	return nil
}

func (r *jobGormRepository) FindByID(ctx context.Context, jobID string) (*model.Job, error) {
	var j model.Job

	err := r.db.WithContext(ctx).
		Where("id = ?", jobID).
		First(&j).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrJobNotFound
		}
		return nil, err
	}

	return &j, nil
}

// 条件付き一覧。新しい順
func (r *jobGormRepository) List(ctx context.Context, q domainrepo.JobListQuery) ([]model.Job, error) {
	tx := r.db.WithContext(ctx).Model(&model.Job{}).Order("created_at DESC")

	if q.Type != "" {
		tx = tx.Where("type = ?", q.Type)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var jobs []model.Job
	if err := tx.Find(&jobs).Error; err != nil {
		return nil, err
	}

	return jobs, nil
}

func (r *jobGormRepository) Update(ctx context.Context, job *model.Job) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return err
	}
	return nil
}

func (r *jobGormRepository) Delete(ctx context.Context, jobID string) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", jobID).
		Delete(&model.Job{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrJobNotFound
	}
	return nil
}
