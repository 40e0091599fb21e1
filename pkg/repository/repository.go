package repository

import (
	"gorm.io/gorm"
)

// DefaultPageSize is the default pagination page size when page size is not assigned
const DefaultPageSize = 10

// MaxPageSize is the maximum pagination page size if the assigned value is over this number
const MaxPageSize = 100

// RepositoryI aggregates the per-entity repository interfaces consumed by the
// service layer.
type RepositoryI interface {
	JobPostingI
	CandidateI
	CompanyGroupI
	CompanyUserI
	CompanyGroupPermissionI
	ApplicationI
	SelectionProgressI
	RoomI
	MessageI
	NotificationI
}

// Repository implements RepositoryI on top of a gorm connection.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}
