package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type MessageI interface {
	MessageTableName() string
	CreateMessage(ctx context.Context, msg Message) (*Message, error)
	GetMessageByUID(ctx context.Context, uid uuid.UUID) (*Message, error)
	ListMessagesByRoom(ctx context.Context, roomUID uuid.UUID, limit int) ([]*Message, error)
}

type MessageSenderType string

const (
	MessageSenderCandidate MessageSenderType = "CANDIDATE"
	MessageSenderCompany   MessageSenderType = "COMPANY"
	MessageSenderSystem    MessageSenderType = "SYSTEM"
)

type MessageType string

const (
	MessageTypeApplication MessageType = "APPLICATION"
	MessageTypeText        MessageType = "TEXT"
)

type MessageStatus string

const (
	MessageStatusSent MessageStatus = "SENT"
)

type Message struct {
	UID                  uuid.UUID         `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	RoomUID              uuid.UUID         `gorm:"column:room_uid;type:uuid;not null" json:"room_uid"`
	SenderType           MessageSenderType `gorm:"column:sender_type;not null" json:"sender_type"`
	SenderCandidateUID   *uuid.UUID        `gorm:"column:sender_candidate_uid;type:uuid" json:"sender_candidate_uid"`
	SenderCompanyUserUID *uuid.UUID        `gorm:"column:sender_company_user_uid;type:uuid" json:"sender_company_user_uid"`
	Type                 MessageType       `gorm:"column:type;not null" json:"type"`
	Subject              string            `gorm:"column:subject" json:"subject"`
	Body                 string            `gorm:"column:body;type:text" json:"body"`
	FileURLs             datatypes.JSON    `gorm:"column:file_urls" json:"file_urls"`
	Status               MessageStatus     `gorm:"column:status;not null" json:"status"`
	SentTime             time.Time         `gorm:"column:sent_time;not null" json:"sent_time"`
	CreateTime           time.Time         `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime           time.Time         `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
}

func (Message) TableName() string {
	return "message"
}

// AttachedFileURLs decodes the file URL list stored on the row.
func (m *Message) AttachedFileURLs() ([]string, error) {
	if len(m.FileURLs) == 0 {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal(m.FileURLs, &urls); err != nil {
		return nil, errors.Wrap(err, "decoding message file URLs")
	}
	return urls, nil
}

type MessageColumns struct {
	UID                  string
	RoomUID              string
	SenderType           string
	SenderCandidateUID   string
	SenderCompanyUserUID string
	Type                 string
	Subject              string
	Body                 string
	FileURLs             string
	Status               string
	SentTime             string
	CreateTime           string
	UpdateTime           string
}

var MessageColumn = MessageColumns{
	UID:                  "uid",
	RoomUID:              "room_uid",
	SenderType:           "sender_type",
	SenderCandidateUID:   "sender_candidate_uid",
	SenderCompanyUserUID: "sender_company_user_uid",
	Type:                 "type",
	Subject:              "subject",
	Body:                 "body",
	FileURLs:             "file_urls",
	Status:               "status",
	SentTime:             "sent_time",
	CreateTime:           "create_time",
	UpdateTime:           "update_time",
}

func (r *Repository) MessageTableName() string {
	return "message"
}

func (r *Repository) CreateMessage(ctx context.Context, msg Message) (*Message, error) {
	if msg.UID.IsNil() {
		msg.UID = uuid.Must(uuid.NewV4())
	}
	if msg.SentTime.IsZero() {
		msg.SentTime = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, errors.Wrap(err, "creating message")
	}
	return &msg, nil
}

func (r *Repository) GetMessageByUID(ctx context.Context, uid uuid.UUID) (*Message, error) {
	var msg Message
	if err := r.db.WithContext(ctx).Where(MessageColumn.UID+" = ?", uid).First(&msg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "message %s", uid)
		}
		return nil, errors.Wrap(err, "fetching message")
	}
	return &msg, nil
}

func (r *Repository) ListMessagesByRoom(ctx context.Context, roomUID uuid.UUID, limit int) ([]*Message, error) {
	if limit > MaxPageSize {
		limit = MaxPageSize
	} else if limit <= 0 {
		limit = DefaultPageSize
	}

	var messages []*Message
	if err := r.db.WithContext(ctx).
		Where(MessageColumn.RoomUID+" = ?", roomUID).
		Order(MessageColumn.SentTime + " DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, errors.Wrap(err, "listing messages")
	}
	return messages, nil
}
