package repository

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

type RoomI interface {
	RoomTableName() string
	ListRoomsByKeys(ctx context.Context, candidateUID, companyGroupUID, jobPostingUID uuid.UUID, roomType RoomType) ([]*Room, error)
	CreateRoom(ctx context.Context, room Room) (*Room, error)
	UpdateRoomParticipants(ctx context.Context, roomUID uuid.UUID, companyUserUIDs []uuid.UUID) error
	GetRoomByUID(ctx context.Context, uid uuid.UUID) (*Room, error)
}

type RoomType string

const (
	RoomTypeDirect RoomType = "direct"
)

// Room is a persistent messaging thread between one candidate and one
// company group, scoped to a job posting. The
// (candidate_uid, company_group_uid, job_posting_uid, type) tuple is
// intended-unique; reads tolerate duplicates by picking the newest row.
type Room struct {
	UID                        uuid.UUID      `gorm:"column:uid;type:uuid;primaryKey" json:"uid"`
	Type                       RoomType       `gorm:"column:type;not null" json:"type"`
	CandidateUID               uuid.UUID      `gorm:"column:candidate_uid;type:uuid;not null" json:"candidate_uid"`
	CompanyGroupUID            uuid.UUID      `gorm:"column:company_group_uid;type:uuid;not null" json:"company_group_uid"`
	JobPostingUID              uuid.UUID      `gorm:"column:job_posting_uid;type:uuid;not null" json:"job_posting_uid"`
	ParticipantCompanyUserUIDs datatypes.JSON `gorm:"column:participant_company_user_uids" json:"participant_company_user_uids"`
	CreateTime                 time.Time      `gorm:"column:create_time;not null;autoCreateTime" json:"create_time"`
	UpdateTime                 time.Time      `gorm:"column:update_time;not null;autoUpdateTime" json:"update_time"`
}

func (Room) TableName() string {
	return "room"
}

// Participants decodes the participant company user UIDs stored on the row.
func (rm *Room) Participants() ([]uuid.UUID, error) {
	if len(rm.ParticipantCompanyUserUIDs) == 0 {
		return nil, nil
	}
	var uids []uuid.UUID
	if err := json.Unmarshal(rm.ParticipantCompanyUserUIDs, &uids); err != nil {
		return nil, errors.Wrap(err, "decoding room participants")
	}
	return uids, nil
}

type RoomColumns struct {
	UID                        string
	Type                       string
	CandidateUID               string
	CompanyGroupUID            string
	JobPostingUID              string
	ParticipantCompanyUserUIDs string
	CreateTime                 string
	UpdateTime                 string
}

var RoomColumn = RoomColumns{
	UID:                        "uid",
	Type:                       "type",
	CandidateUID:               "candidate_uid",
	CompanyGroupUID:            "company_group_uid",
	JobPostingUID:              "job_posting_uid",
	ParticipantCompanyUserUIDs: "participant_company_user_uids",
	CreateTime:                 "create_time",
	UpdateTime:                 "update_time",
}

func (r *Repository) RoomTableName() string {
	return "room"
}

// ListRoomsByKeys returns every room matching the identifying tuple, newest
// first, so callers deterministically pick the most recent row when
// duplicates exist.
func (r *Repository) ListRoomsByKeys(ctx context.Context, candidateUID, companyGroupUID, jobPostingUID uuid.UUID, roomType RoomType) ([]*Room, error) {
	var rooms []*Room
	whereClause := RoomColumn.CandidateUID + " = ? AND " +
		RoomColumn.CompanyGroupUID + " = ? AND " +
		RoomColumn.JobPostingUID + " = ? AND " +
		RoomColumn.Type + " = ?"
	if err := r.db.WithContext(ctx).
		Where(whereClause, candidateUID, companyGroupUID, jobPostingUID, roomType).
		Order(RoomColumn.CreateTime + " DESC").
		Find(&rooms).Error; err != nil {
		return nil, errors.Wrap(err, "listing rooms")
	}
	return rooms, nil
}

// CreateRoom inserts a room. A unique-constraint violation on the
// identifying tuple is surfaced as ErrAlreadyExists so the caller can
// re-query and adopt the concurrently created row.
func (r *Repository) CreateRoom(ctx context.Context, room Room) (*Room, error) {
	if room.UID.IsNil() {
		room.UID = uuid.Must(uuid.NewV4())
	}
	if err := r.db.WithContext(ctx).Create(&room).Error; err != nil {
		if strings.Contains(err.Error(), "violates unique constraint") ||
			strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, errors.Wrap(errdomain.ErrAlreadyExists, "room")
		}
		return nil, errors.Wrap(err, "creating room")
	}
	return &room, nil
}

// UpdateRoomParticipants snapshots the group membership onto the room. This
// happens only at room creation; later membership changes are not synced.
func (r *Repository) UpdateRoomParticipants(ctx context.Context, roomUID uuid.UUID, companyUserUIDs []uuid.UUID) error {
	encoded, err := json.Marshal(companyUserUIDs)
	if err != nil {
		return errors.Wrap(err, "encoding room participants")
	}
	if err := r.db.WithContext(ctx).Model(&Room{}).
		Where(RoomColumn.UID+" = ?", roomUID).
		Update(RoomColumn.ParticipantCompanyUserUIDs, datatypes.JSON(encoded)).Error; err != nil {
		return errors.Wrap(err, "updating room participants")
	}
	return nil
}

func (r *Repository) GetRoomByUID(ctx context.Context, uid uuid.UUID) (*Room, error) {
	var room Room
	if err := r.db.WithContext(ctx).Where(RoomColumn.UID+" = ?", uid).First(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(errdomain.ErrNotFound, "room %s", uid)
		}
		return nil, errors.Wrap(err, "fetching room")
	}
	return &room, nil
}
