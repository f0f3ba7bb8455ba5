package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"jobboard/internal/domain/model"
	repo "jobboard/internal/repository"
)

type JobUsecase struct {
	jobRepo repo.JobRepository
	appRepo repo.ApplicationRepository
	idGen   IDGenerator
}

// DI
func NewJobUsecase(
	jobRepo repo.JobRepository,
	appRepo repo.ApplicationRepository,
	idGen IDGenerator,
) *JobUsecase {
	return &JobUsecase{
		jobRepo: jobRepo,
		appRepo: appRepo,
		idGen:   idGen,
	}
}

// GET /jobs の入力DTO
type ListJobsInput struct {
	Type   string
	UserID string
	Limit  int
}

type JobListOutput struct {
	Jobs []model.Job `json:"jobs"`
}

// 作成・更新で受け取るフィールド（所有者は入力にならない）
type JobInput struct {
	Title               string `json:"title"`
	Type                string `json:"type"`
	Description         string `json:"description"`
	Location            string `json:"location"`
	Salary              string `json:"salary"`
	CompanyName         string `json:"company_name"`
	CompanyDescription  string `json:"company_description"`
	CompanyContactEmail string `json:"company_contact_email"`
	CompanyContactPhone string `json:"company_contact_phone"`
}

func (u *JobUsecase) ListJobs(ctx context.Context, in ListJobsInput) (JobListOutput, error) {
	if in.Limit < 0 || in.Limit > 100 {
		return JobListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	jobs, err := u.jobRepo.List(ctx, repo.JobListQuery{
		Type:   strings.TrimSpace(in.Type),
		UserID: in.UserID,
		Limit:  in.Limit,
	})
	if err != nil {
		return JobListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if jobs == nil {
		jobs = []model.Job{}
	}

	return JobListOutput{Jobs: jobs}, nil
}

func (u *JobUsecase) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := u.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrJobNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return job, nil
}

// CreateJobは求人を作成する。所有者は必ず呼び出し元のID
func (u *JobUsecase) CreateJob(ctx context.Context, callerID string, in JobInput) (*model.Job, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "title is required")
	}

	job := &model.Job{
		ID:                  u.idGen.NewID(),
		UserID:              callerID,
		Title:               in.Title,
		Type:                in.Type,
		Description:         in.Description,
		Location:            in.Location,
		Salary:              in.Salary,
		CompanyName:         in.CompanyName,
		CompanyDescription:  in.CompanyDescription,
		CompanyContactEmail: in.CompanyContactEmail,
		CompanyContactPhone: in.CompanyContactPhone,
	}

	if err := u.jobRepo.Create(ctx, job); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return job, nil
}

// UpdateJobは所有者だけが更新できる。
// 存在チェックが先、所有チェックが後（ない物を403にしない）
func (u *JobUsecase) UpdateJob(ctx context.Context, callerID string, jobID string, in JobInput) (*model.Job, error) {
	job, err := u.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrJobNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if job.UserID != callerID {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if strings.TrimSpace(in.Title) == "" {
		return nil, NewHTTPError(http.StatusBadRequest, "title is required")
	}

	//所有者（UserID）は書き換えない
	job.Title = in.Title
	job.Type = in.Type
	job.Description = in.Description
	job.Location = in.Location
	job.Salary = in.Salary
	job.CompanyName = in.CompanyName
	job.CompanyDescription = in.CompanyDescription
	job.CompanyContactEmail = in.CompanyContactEmail
	job.CompanyContactPhone = in.CompanyContactPhone

	if err := u.jobRepo.Update(ctx, job); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return job, nil
}

// DeleteJobも存在チェック→所有チェックの順
func (u *JobUsecase) DeleteJob(ctx context.Context, callerID string, jobID string) error {
	job, err := u.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrJobNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if job.UserID != callerID {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := u.jobRepo.Delete(ctx, jobID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}

type ApplyInput struct {
	ResumePath string `json:"resume_path"`
}

// ApplyToJobはjob_seekerの応募。求人がなければ404、二重応募は409
func (u *JobUsecase) ApplyToJob(ctx context.Context, callerID string, jobID string, in ApplyInput) (*model.Application, error) {
	if _, err := u.jobRepo.FindByID(ctx, jobID); err != nil {
		if errors.Is(err, repo.ErrJobNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	app := &model.Application{
		ID:          u.idGen.NewID(),
		JobID:       jobID,
		ApplicantID: callerID,
		ResumePath:  in.ResumePath,
		Status:      model.ApplicationPending,
	}

	if err := u.appRepo.Create(ctx, app); err != nil {
		if errors.Is(err, repo.ErrAlreadyApplied) {
			return nil, NewHTTPError(http.StatusConflict, "already applied")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return app, nil
}

// ListJobApplicationsは求人の所有者だけが応募一覧を見られる
func (u *JobUsecase) ListJobApplications(ctx context.Context, callerID string, jobID string) ([]model.Application, error) {
	job, err := u.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repo.ErrJobNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if job.UserID != callerID {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	apps, err := u.appRepo.ListByJobID(ctx, jobID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if apps == nil {
		apps = []model.Application{}
	}

	return apps, nil
}

// UpdateApplicationStatusは応募先の求人の所有者だけが変更できる
func (u *JobUsecase) UpdateApplicationStatus(ctx context.Context, callerID string, appID string, status string) (*model.Application, error) {
	switch model.ApplicationStatus(status) {
	case model.ApplicationPending, model.ApplicationAccepted, model.ApplicationRejected:
	default:
		return nil, NewHTTPError(http.StatusBadRequest, "invalid status")
	}

	app, err := u.appRepo.FindByID(ctx, appID)
	if err != nil {
		if errors.Is(err, repo.ErrApplicationNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//応募→求人→所有者と辿って確認する
	job, err := u.jobRepo.FindByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, repo.ErrJobNotFound) {
			return nil, NewHTTPError(http.StatusNotFound, "not found")
		}
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if job.UserID != callerID {
		return nil, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	if err := u.appRepo.UpdateStatus(ctx, appID, model.ApplicationStatus(status)); err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	app.Status = model.ApplicationStatus(status)
	return app, nil
}
