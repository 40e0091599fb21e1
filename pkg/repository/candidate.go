package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type CandidateI interface {
	CandidateTableName() string
	GetCandidateByUID(ctx context.Context, uid uuid.UUID) (*Candidate, error)
}

// Candidate rows are created at signup, which is out of this service's
// scope. They are only read here.
type Candidate struct {
	UID         uuid.UUID  `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	Email       string     `gorm:"column:email;not null" json:"email"`
	DisplayName string     `gorm:"column:display_name;not null" json:"display_name"`
	CreateTime  time.Time  `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime  time.Time  `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
	DeleteTime  *time.Time `gorm:"column:delete_time" json:"delete_time"`
}

func (Candidate) TableName() string {
	return "candidate"
}

type CandidateColumns struct {
	UID         string
	Email       string
	DisplayName string
	CreateTime  string
	UpdateTime  string
	DeleteTime  string
}

var CandidateColumn = CandidateColumns{
	UID:         "uid",
	Email:       "email",
	DisplayName: "display_name",
	CreateTime:  "create_time",
	UpdateTime:  "update_time",
	DeleteTime:  "delete_time",
}

func (r *Repository) CandidateTableName() string {
	return "candidate"
}

func (r *Repository) GetCandidateByUID(ctx context.Context, uid uuid.UUID) (*Candidate, error) {
	var candidate Candidate
	whereClause := CandidateColumn.UID + " = ? AND " + CandidateColumn.DeleteTime + " IS NULL"
	if err := r.db.WithContext(ctx).Where(whereClause, uid).First(&candidate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "candidate %s", uid)
		}
		return nil, errors.Wrap(err, "fetching candidate")
	}
	return &candidate, nil
}
