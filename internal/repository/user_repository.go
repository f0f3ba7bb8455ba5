package repository

import (
	"context"
	"errors"

	"jobboard/internal/domain/model"
)

// ユーザーが見つかりませんを統一
var ErrUserNotFound = errors.New("user not found")

// usernameの一意制約違反
var ErrUsernameTaken = errors.New("username taken")

// ユーザーの保存・取得を約束
type UserRepository interface {
	//新規ユーザー作成
	Create(ctx context.Context, user *model.User) error
	// IDからユーザーを1件取得する。
	FindByID(ctx context.Context, userID string) (*model.User, error)
	// usernameからユーザーを1件取得する（大文字小文字は区別）
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// refresh tokenを上書きする（nilでクリア）
	UpdateRefreshToken(ctx context.Context, userID string, token *string) error
	// 提示された値と一致する行だけrefresh tokenをクリアする（logout用）
	ClearRefreshTokenByValue(ctx context.Context, token string) error
	// プロフィール画像URLを更新する（認証状態とは独立に変更できる）
	UpdateProfileImageURL(ctx context.Context, userID string, url string) error
}
