package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"

	"github.com/cockroachdb/errors"
)

type CompanyGroupPermissionI interface {
	CompanyGroupPermissionTableName() string
	ListCompanyUserUIDsByGroup(ctx context.Context, companyGroupUID uuid.UUID) ([]uuid.UUID, error)
}

// CompanyGroupPermission is the membership join between company users and
// company groups. A row grants the user access to the group's postings and
// rooms.
type CompanyGroupPermission struct {
	UID             uuid.UUID `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	CompanyGroupUID uuid.UUID `gorm:"column:company_group_uid;type:uuid;not null" json:"company_group_uid"`
	CompanyUserUID  uuid.UUID `gorm:"column:company_user_uid;type:uuid;not null" json:"company_user_uid"`
	Role            string    `gorm:"column:role;not null" json:"role"`
	CreateTime      time.Time `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime      time.Time `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
}

func (CompanyGroupPermission) TableName() string {
	return "company_group_permission"
}

type CompanyGroupPermissionColumns struct {
	UID             string
	CompanyGroupUID string
	CompanyUserUID  string
	Role            string
	CreateTime      string
	UpdateTime      string
}

var CompanyGroupPermissionColumn = CompanyGroupPermissionColumns{
	UID:             "uid",
	CompanyGroupUID: "company_group_uid",
	CompanyUserUID:  "company_user_uid",
	Role:            "role",
	CreateTime:      "create_time",
	UpdateTime:      "update_time",
}

func (r *Repository) CompanyGroupPermissionTableName() string {
	return "company_group_permission"
}

// ListCompanyUserUIDsByGroup returns the UIDs of all company users holding a
// permission row on the group, in grant order.
func (r *Repository) ListCompanyUserUIDsByGroup(ctx context.Context, companyGroupUID uuid.UUID) ([]uuid.UUID, error) {
	var uids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&CompanyGroupPermission{}).
		Where(CompanyGroupPermissionColumn.CompanyGroupUID+" = ?", companyGroupUID).
		Order(CompanyGroupPermissionColumn.CreateTime).
		Pluck(CompanyGroupPermissionColumn.CompanyUserUID, &uids).Error; err != nil {
		return nil, errors.Wrap(err, "listing group members")
	}
	return uids, nil
}
