package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type CompanyUserI interface {
	CompanyUserTableName() string
	GetFirstCompanyUserByAccount(ctx context.Context, companyAccountUID uuid.UUID) (*CompanyUser, error)
}

type CompanyUser struct {
	UID               uuid.UUID  `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	CompanyAccountUID uuid.UUID  `gorm:"column:company_account_uid;type:uuid;not null" json:"company_account_uid"`
	Email             string     `gorm:"column:email;not null" json:"email"`
	DisplayName       string     `gorm:"column:display_name;not null" json:"display_name"`
	CreateTime        time.Time  `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime        time.Time  `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
	DeleteTime        *time.Time `gorm:"column:delete_time" json:"delete_time"`
}

func (CompanyUser) TableName() string {
	return "company_user"
}

type CompanyUserColumns struct {
	UID               string
	CompanyAccountUID string
	Email             string
	DisplayName       string
	CreateTime        string
	UpdateTime        string
	DeleteTime        string
}

var CompanyUserColumn = CompanyUserColumns{
	UID:               "uid",
	CompanyAccountUID: "company_account_uid",
	Email:             "email",
	DisplayName:       "display_name",
	CreateTime:        "create_time",
	UpdateTime:        "update_time",
	DeleteTime:        "delete_time",
}

func (r *Repository) CompanyUserTableName() string {
	return "company_user"
}

// GetFirstCompanyUserByAccount returns one company user of the account, in
// creation order. The submission workflow uses it to pick the user owning
// the application thread.
func (r *Repository) GetFirstCompanyUserByAccount(ctx context.Context, companyAccountUID uuid.UUID) (*CompanyUser, error) {
	var user CompanyUser
	whereClause := CompanyUserColumn.CompanyAccountUID + " = ? AND " + CompanyUserColumn.DeleteTime + " IS NULL"
	if err := r.db.WithContext(ctx).Where(whereClause, companyAccountUID).
		Order(CompanyUserColumn.CreateTime).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNoCompanyUser, "account %s", companyAccountUID)
		}
		return nil, errors.Wrap(err, "fetching company user")
	}
	return &user, nil
}
