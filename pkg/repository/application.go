package repository

import (
	"context"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type ApplicationI interface {
	ApplicationTableName() string
	CreateApplication(ctx context.Context, application Application) (*Application, error)
	GetApplicationByCandidateAndJob(ctx context.Context, candidateUID, jobPostingUID uuid.UUID) (*Application, error)
	GetApplicationByUID(ctx context.Context, uid uuid.UUID) (*Application, error)
	ListApplicationsByCandidate(ctx context.Context, candidateUID uuid.UUID) ([]*Application, error)
}

// ApplicationStatus tracks the submission lifecycle. New applications start
// as SENT.
type ApplicationStatus string

const (
	ApplicationStatusSent     ApplicationStatus = "SENT"
	ApplicationStatusViewed   ApplicationStatus = "VIEWED"
	ApplicationStatusArchived ApplicationStatus = "ARCHIVED"
)

// Application is a candidate's submitted request to be considered for a job
// posting. The (candidate_uid, job_posting_uid) pair is intended-unique;
// enforcement is an application-level pre-check plus a conflict check on
// insert.
type Application struct {
	UID               uuid.UUID         `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	CandidateUID      uuid.UUID         `gorm:"column:candidate_uid;type:uuid;not null" json:"candidate_uid"`
	JobPostingUID     uuid.UUID         `gorm:"column:job_posting_uid;type:uuid;not null" json:"job_posting_uid"`
	CompanyAccountUID uuid.UUID         `gorm:"column:company_account_uid;type:uuid;not null" json:"company_account_uid"`
	CompanyGroupUID   uuid.UUID         `gorm:"column:company_group_uid;type:uuid;not null" json:"company_group_uid"`
	CompanyUserUID    uuid.UUID         `gorm:"column:company_user_uid;type:uuid;not null" json:"company_user_uid"`
	ResumeURL         string            `gorm:"column:resume_url" json:"resume_url"`
	CareerSheetURL    string            `gorm:"column:career_sheet_url" json:"career_sheet_url"`
	Message           string            `gorm:"column:message;type:text" json:"message"`
	Status            ApplicationStatus `gorm:"column:status;not null" json:"status"`
	CreateTime        time.Time         `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime        time.Time         `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
}

func (Application) TableName() string {
	return "application"
}

type ApplicationColumns struct {
	UID               string
	CandidateUID      string
	JobPostingUID     string
	CompanyAccountUID string
	CompanyGroupUID   string
	CompanyUserUID    string
	ResumeURL         string
	CareerSheetURL    string
	Message           string
	Status            string
	CreateTime        string
	UpdateTime        string
}

var ApplicationColumn = ApplicationColumns{
	UID:               "uid",
	CandidateUID:      "candidate_uid",
	JobPostingUID:     "job_posting_uid",
	CompanyAccountUID: "company_account_uid",
	CompanyGroupUID:   "company_group_uid",
	CompanyUserUID:    "company_user_uid",
	ResumeURL:         "resume_url",
	CareerSheetURL:    "career_sheet_url",
	Message:           "message",
	Status:            "status",
	CreateTime:        "create_time",
	UpdateTime:        "update_time",
}

func (r *Repository) ApplicationTableName() string {
	return "application"
}

func (r *Repository) CreateApplication(ctx context.Context, application Application) (*Application, error) {
	if application.UID.IsNil() {
		application.UID = uuid.Must(uuid.NewV4())
	}
	if err := r.db.WithContext(ctx).Create(&application).Error; err != nil {
		if strings.Contains(err.Error(), "violates unique constraint") {
			return nil, errors.Wrap(errdomain.ErrAlreadyExists, "application")
		}
		return nil, errors.Wrap(err, "creating application")
	}
	return &application, nil
}

// GetApplicationByCandidateAndJob is the duplicate pre-check. A nil result
// with ErrNotFound means the candidate has not applied to the job yet.
func (r *Repository) GetApplicationByCandidateAndJob(ctx context.Context, candidateUID, jobPostingUID uuid.UUID) (*Application, error) {
	var application Application
	whereClause := ApplicationColumn.CandidateUID + " = ? AND " + ApplicationColumn.JobPostingUID + " = ?"
	if err := r.db.WithContext(ctx).Where(whereClause, candidateUID, jobPostingUID).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "application for candidate %s and job %s", candidateUID, jobPostingUID)
		}
		return nil, errors.Wrap(err, "checking prior application")
	}
	return &application, nil
}

func (r *Repository) GetApplicationByUID(ctx context.Context, uid uuid.UUID) (*Application, error) {
	var application Application
	if err := r.db.WithContext(ctx).Where(ApplicationColumn.UID+" = ?", uid).First(&application).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "application %s", uid)
		}
		return nil, errors.Wrap(err, "fetching application")
	}
	return &application, nil
}

func (r *Repository) ListApplicationsByCandidate(ctx context.Context, candidateUID uuid.UUID) ([]*Application, error) {
	var applications []*Application
	if err := r.db.WithContext(ctx).
		Where(ApplicationColumn.CandidateUID+" = ?", candidateUID).
		Order(ApplicationColumn.CreateTime + " DESC").
		Find(&applications).Error; err != nil {
		return nil, errors.Wrap(err, "listing applications")
	}
	return applications, nil
}
