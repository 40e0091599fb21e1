package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gopkg.in/guregu/null.v4"

	"github.com/cockroachdb/errors"
)

type SelectionProgressI interface {
	SelectionProgressTableName() string
	CreateSelectionProgress(ctx context.Context, progress SelectionProgress) (*SelectionProgress, error)
}

// SelectionProgress tracks a candidate's status through a company's hiring
// stages for one application. It is created best-effort alongside the
// application; the per-stage results stay null until the company records
// them.
type SelectionProgress struct {
	UID                     uuid.UUID   `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	CandidateUID            uuid.UUID   `gorm:"column:candidate_uid;type:uuid;not null" json:"candidate_uid"`
	CompanyGroupUID         uuid.UUID   `gorm:"column:company_group_uid;type:uuid;not null" json:"company_group_uid"`
	ApplicationUID          uuid.UUID   `gorm:"column:application_uid;type:uuid;not null" json:"application_uid"`
	JobPostingUID           uuid.UUID   `gorm:"column:job_posting_uid;type:uuid;not null" json:"job_posting_uid"`
	DocumentScreeningResult null.String `gorm:"column:document_screening_result" json:"document_screening_result"`
	FirstInterviewResult    null.String `gorm:"column:first_interview_result" json:"first_interview_result"`
	SecondInterviewResult   null.String `gorm:"column:second_interview_result" json:"second_interview_result"`
	FinalInterviewResult    null.String `gorm:"column:final_interview_result" json:"final_interview_result"`
	OfferResult             null.String `gorm:"column:offer_result" json:"offer_result"`
	Memo                    string      `gorm:"column:memo;type:text" json:"memo"`
	CreateTime              time.Time   `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime              time.Time   `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
}

func (SelectionProgress) TableName() string {
	return "selection_progress"
}

type SelectionProgressColumns struct {
	UID                     string
	CandidateUID            string
	CompanyGroupUID         string
	ApplicationUID          string
	JobPostingUID           string
	DocumentScreeningResult string
	FirstInterviewResult    string
	SecondInterviewResult   string
	FinalInterviewResult    string
	OfferResult             string
	Memo                    string
	CreateTime              string
	UpdateTime              string
}

var SelectionProgressColumn = SelectionProgressColumns{
	UID:                     "uid",
	CandidateUID:            "candidate_uid",
	CompanyGroupUID:         "company_group_uid",
	ApplicationUID:          "application_uid",
	JobPostingUID:           "job_posting_uid",
	DocumentScreeningResult: "document_screening_result",
	FirstInterviewResult:    "first_interview_result",
	SecondInterviewResult:   "second_interview_result",
	FinalInterviewResult:    "final_interview_result",
	OfferResult:             "offer_result",
	Memo:                    "memo",
	CreateTime:              "create_time",
	UpdateTime:              "update_time",
}

func (r *Repository) SelectionProgressTableName() string {
	return "selection_progress"
}

func (r *Repository) CreateSelectionProgress(ctx context.Context, progress SelectionProgress) (*SelectionProgress, error) {
	if progress.UID.IsNil() {
		progress.UID = uuid.Must(uuid.NewV4())
	}
	if err := r.db.WithContext(ctx).Create(&progress).Error; err != nil {
		return nil, errors.Wrap(err, "creating selection progress")
	}
	return &progress, nil
}
