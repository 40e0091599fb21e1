package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type CompanyGroupI interface {
	CompanyGroupTableName() string
	GetCompanyGroupByUID(ctx context.Context, uid uuid.UUID) (*CompanyGroup, error)
	CreateCompanyGroup(ctx context.Context, group CompanyGroup) (*CompanyGroup, error)
}

// CompanyGroup is a sub-unit of a company account that owns job postings and
// messaging threads. Groups normally pre-exist; the submission workflow may
// provision a fallback group when a posting references a missing one.
type CompanyGroup struct {
	UID               uuid.UUID  `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	CompanyAccountUID uuid.UUID  `gorm:"column:company_account_uid;type:uuid;not null" json:"company_account_uid"`
	Name              string     `gorm:"column:name;not null" json:"name"`
	CreateTime        time.Time  `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime        time.Time  `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
	DeleteTime        *time.Time `gorm:"column:delete_time" json:"delete_time"`
}

func (CompanyGroup) TableName() string {
	return "company_group"
}

type CompanyGroupColumns struct {
	UID               string
	CompanyAccountUID string
	Name              string
	CreateTime        string
	UpdateTime        string
	DeleteTime        string
}

var CompanyGroupColumn = CompanyGroupColumns{
	UID:               "uid",
	CompanyAccountUID: "company_account_uid",
	Name:              "name",
	CreateTime:        "create_time",
	UpdateTime:        "update_time",
	DeleteTime:        "delete_time",
}

func (r *Repository) CompanyGroupTableName() string {
	return "company_group"
}

func (r *Repository) GetCompanyGroupByUID(ctx context.Context, uid uuid.UUID) (*CompanyGroup, error) {
	var group CompanyGroup
	whereClause := CompanyGroupColumn.UID + " = ? AND " + CompanyGroupColumn.DeleteTime + " IS NULL"
	if err := r.db.WithContext(ctx).Where(whereClause, uid).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "company group %s", uid)
		}
		return nil, errors.Wrap(err, "fetching company group")
	}
	return &group, nil
}

func (r *Repository) CreateCompanyGroup(ctx context.Context, group CompanyGroup) (*CompanyGroup, error) {
	if group.UID.IsNil() {
		group.UID = uuid.Must(uuid.NewV4())
	}
	if err := r.db.WithContext(ctx).Create(&group).Error; err != nil {
		return nil, errors.Wrap(err, "creating company group")
	}
	return &group, nil
}
