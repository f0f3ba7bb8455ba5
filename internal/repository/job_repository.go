package repository

import (
	"context"
	"errors"

	"jobboard/internal/domain/model"
)

var ErrJobNotFound = errors.New("job not found")

// GET /jobs の絞り込み条件
type JobListQuery struct {
	Type   string // 雇用形態で絞る（空なら全件）
	UserID string // 所有者で絞る（プロフィール画面用）
	Limit  int    // 0なら制限なし
}

// 求人の保存・取得を約束
type JobRepository interface {
	Create(ctx context.Context, job *model.Job) error
	FindByID(ctx context.Context, jobID string) (*model.Job, error)
	List(ctx context.Context, q JobListQuery) ([]model.Job, error)
	Update(ctx context.Context, job *model.Job) error
	Delete(ctx context.Context, jobID string) error
}
