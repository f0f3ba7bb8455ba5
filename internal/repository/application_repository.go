package repository

import (
	"context"
	"errors"

	"jobboard/internal/domain/model"
)

var ErrApplicationNotFound = errors.New("application not found")

// 同じ求人への二重応募
var ErrAlreadyApplied = errors.New("already applied")

// 応募の保存・取得を約束
type ApplicationRepository interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, appID string) (*model.Application, error)
	ListByJobID(ctx context.Context, jobID string) ([]model.Application, error)
	UpdateStatus(ctx context.Context, appID string, status model.ApplicationStatus) error
}
