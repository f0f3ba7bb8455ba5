package model

import "time"

type Job struct {
	ID string `gorm:"type:uuid;primaryKey" json:"id"`

	// 求人を作成したユーザー（所有者）。作成後は変更不可
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	Title       string `gorm:"type:varchar(100);not null" json:"title"`
	Type        string `gorm:"type:varchar(50)" json:"type"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"type:varchar(100)" json:"location"`
	Salary      string `gorm:"type:varchar(50)" json:"salary"`

	CompanyName         string `gorm:"type:varchar(100)" json:"company_name"`
	CompanyDescription  string `gorm:"type:text" json:"company_description"`
	CompanyContactEmail string `gorm:"type:varchar(100)" json:"company_contact_email"`
	CompanyContactPhone string `gorm:"type:varchar(20)" json:"company_contact_phone"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
