package repository

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"gopkg.in/guregu/null.v4"

	"github.com/cockroachdb/errors"
)

type NotificationI interface {
	NotificationTableName() string
	CreateNotification(ctx context.Context, notification Notification) (*Notification, error)
	ListNotificationsByCompanyUser(ctx context.Context, companyUserUID uuid.UUID, limit int) ([]*Notification, error)
}

type NotificationType string

const (
	NotificationTypeNewApplication NotificationType = "NEW_APPLICATION"
	NotificationTypeNewMessage     NotificationType = "NEW_MESSAGE"
)

// Notification rows are written fire-and-forget when a message lands in a
// room a company user participates in.
type Notification struct {
	UID            uuid.UUID        `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	CompanyUserUID uuid.UUID        `gorm:"column:company_user_uid;type:uuid;not null" json:"company_user_uid"`
	MessageUID     uuid.UUID        `gorm:"column:message_uid;type:uuid;not null" json:"message_uid"`
	Type           NotificationType `gorm:"column:type;not null" json:"type"`
	ReadTime       null.Time        `gorm:"column:read_time" json:"read_time"`
	CreateTime     time.Time        `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
}

func (Notification) TableName() string {
	return "notification"
}

type NotificationColumns struct {
	UID            string
	CompanyUserUID string
	MessageUID     string
	Type           string
	ReadTime       string
	CreateTime     string
}

var NotificationColumn = NotificationColumns{
	UID:            "uid",
	CompanyUserUID: "company_user_uid",
	MessageUID:     "message_uid",
	Type:           "type",
	ReadTime:       "read_time",
	CreateTime:     "create_time",
}

func (r *Repository) NotificationTableName() string {
	return "notification"
}

func (r *Repository) CreateNotification(ctx context.Context, notification Notification) (*Notification, error) {
	if notification.UID.IsNil() {
		notification.UID = uuid.Must(uuid.NewV4())
	}
	if err := r.db.WithContext(ctx).Create(&notification).Error; err != nil {
		return nil, errors.Wrap(err, "creating notification")
	}
	return &notification, nil
}

func (r *Repository) ListNotificationsByCompanyUser(ctx context.Context, companyUserUID uuid.UUID, limit int) ([]*Notification, error) {
	if limit > MaxPageSize {
		limit = MaxPageSize
	} else if limit <= 0 {
		limit = DefaultPageSize
	}

	var notifications []*Notification
	if err := r.db.WithContext(ctx).
		Where(NotificationColumn.CompanyUserUID+" = ?", companyUserUID).
		Order(NotificationColumn.CreateTime + " DESC").
		Limit(limit).
		Find(&notifications).Error; err != nil {
		return nil, errors.Wrap(err, "listing notifications")
	}
	return notifications, nil
}
