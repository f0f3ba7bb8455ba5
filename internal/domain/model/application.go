package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// 応募。1つの求人に同じユーザーは1回まで
type Application struct {
	ID          string            `gorm:"type:uuid;primaryKey" json:"id"`
	JobID       string            `gorm:"type:uuid;not null;index;uniqueIndex:idx_job_applicant" json:"job_id"`
	ApplicantID string            `gorm:"type:uuid;not null;index;uniqueIndex:idx_job_applicant" json:"applicant_id"`
	ResumePath  string            `gorm:"type:text" json:"resume_path"`
	Status      ApplicationStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	CreatedAt   time.Time         `gorm:"not null;autoCreateTime" json:"created_at"`
}
