package repository

import (
	"context"

	"gorm.io/gorm"

	repo "jobboard/internal/repository"
)

type txReposGorm struct {
	users repo.UserRepository
}

func (r *txReposGorm) Users() repo.UserRepository { return r.users }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

// fnがerrorを返すとGORMが全体をrollbackする。
// tx内のreadは同じトランザクションのwriteを見る（書き込み→確認readに使う）
func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			users: NewUserGormRepository(tx),
		}
		return fn(r)
	})
}
