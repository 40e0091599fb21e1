package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type JobPostingI interface {
	JobPostingTableName() string
	GetJobPostingByUID(ctx context.Context, uid uuid.UUID) (*JobPosting, error)
}

// JobPostingStatus is the publication status of a job posting. Only published
// postings accept applications.
type JobPostingStatus string

const (
	JobPostingStatusDraft     JobPostingStatus = "draft"
	JobPostingStatusPublished JobPostingStatus = "published"
	JobPostingStatusClosed    JobPostingStatus = "closed"
)

// JobPostingVisibility controls who can see a published posting.
type JobPostingVisibility string

const (
	JobPostingVisibilityPublic  JobPostingVisibility = "public"
	JobPostingVisibilityMembers JobPostingVisibility = "members"
	JobPostingVisibilityScout   JobPostingVisibility = "scout"
)

// JobPosting is created by the company-side posting flow and read-only to
// this service.
type JobPosting struct {
	UID               uuid.UUID            `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	Title             string               `gorm:"column:title;not null" json:"title"`
	CompanyAccountUID uuid.UUID            `gorm:"column:company_account_uid;type:uuid;not null" json:"company_account_uid"`
	CompanyGroupUID   uuid.UUID            `gorm:"column:company_group_uid;type:uuid;not null" json:"company_group_uid"`
	Status            JobPostingStatus     `gorm:"column:status;not null" json:"status"`
	Visibility        JobPostingVisibility `gorm:"column:visibility;not null" json:"visibility"`
	CreateTime        time.Time            `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime        time.Time            `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
	DeleteTime        *time.Time           `gorm:"column:delete_time" json:"delete_time"`
}

func (JobPosting) TableName() string {
	return "job_posting"
}

type JobPostingColumns struct {
	UID               string
	Title             string
	CompanyAccountUID string
	CompanyGroupUID   string
	Status            string
	Visibility        string
	CreateTime        string
	UpdateTime        string
	DeleteTime        string
}

var JobPostingColumn = JobPostingColumns{
	UID:               "uid",
	Title:             "title",
	CompanyAccountUID: "company_account_uid",
	CompanyGroupUID:   "company_group_uid",
	Status:            "status",
	Visibility:        "visibility",
	CreateTime:        "create_time",
	UpdateTime:        "update_time",
	DeleteTime:        "delete_time",
}

func (r *Repository) JobPostingTableName() string {
	return "job_posting"
}

func (r *Repository) GetJobPostingByUID(ctx context.Context, uid uuid.UUID) (*JobPosting, error) {
	var posting JobPosting
	whereClause := JobPostingColumn.UID + " = ? AND " + JobPostingColumn.DeleteTime + " IS NULL"
	if err := r.db.WithContext(ctx).Where(whereClause, uid).First(&posting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "job posting %s", uid)
		}
		return nil, errors.Wrap(err, "fetching job posting")
	}
	return &posting, nil
}
