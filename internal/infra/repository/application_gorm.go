package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"jobboard/internal/domain/model"
	domainrepo "jobboard/internal/repository"
)

type applicationGormRepository struct {
	db *gorm.DB
}

// DI
func NewApplicationGormRepository(db *gorm.DB) domainrepo.ApplicationRepository {
	return &applicationGormRepository{db: db}
}

func (r *applicationGormRepository) Create(ctx context.Context, app *model.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		// (job_id, applicant_id) の複合unique
		if isUniqueViolation(err) {
			return domainrepo.ErrAlreadyApplied
		}
		return err
	}
	return nil
}

func (r *applicationGormRepository) FindByID(ctx context.Context, appID string) (*model.Application, error) {
	var a model.Application

	err := r.db.WithContext(ctx).
		Where("id = ?", appID).
		First(&a).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrApplicationNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *applicationGormRepository) ListByJobID(ctx context.Context, jobID string) ([]model.Application, error) {
	var apps []model.Application

	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&apps).Error

	if err != nil {
		return nil, err
	}

	return apps, nil
}

func (r *applicationGormRepository) UpdateStatus(ctx context.Context, appID string, status model.ApplicationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.Application{}).
		Where("id = ?", appID).
		Update("status", status)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrApplicationNotFound
	}
	return nil
}
