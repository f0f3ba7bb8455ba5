package model

import (
	"errors"
	"time"
)

type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleJobPoster Role = "job_poster"
)

// 許可していないrole文字列
var ErrUnknownRole = errors.New("unknown role")

// ParseRoleは閉じた集合だけ許可する（それ以外は保存させない）
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleJobSeeker, RoleJobPoster:
		return Role(s), nil
	default:
		return "", ErrUnknownRole
	}
}

type User struct {
	ID           string `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Role         Role   `gorm:"type:varchar(20);not null" json:"role"`

	// 現在有効なrefresh token（アカウントごとに最大1つ）
	// login/registerで上書き、logoutでnilに戻す
	RefreshToken *string `gorm:"index" json:"-"`

	ProfileImageURL *string   `gorm:"type:text" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime" json:"-"`
}
