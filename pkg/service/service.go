package service

import (
	"context"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/hirebridge/recruit-backend/pkg/repository"
	"github.com/hirebridge/recruit-backend/pkg/repository/object"
	"github.com/hirebridge/recruit-backend/pkg/resource"
)

// Service defines the application submission use cases.
type Service interface {
	SubmitApplication(ctx context.Context, identity resource.CandidateIdentity, params SubmitApplicationParams) (*SubmitApplicationResult, error)
	GetApplication(ctx context.Context, identity resource.CandidateIdentity, applicationUID uuid.UUID) (*repository.Application, error)
	ListApplications(ctx context.Context, identity resource.CandidateIdentity) ([]*repository.Application, error)
	ListRoomMessages(ctx context.Context, identity resource.CandidateIdentity, roomUID uuid.UUID, limit int) ([]*repository.Message, error)
	ListNotifications(ctx context.Context, companyUserUID uuid.UUID, limit int) ([]*repository.Notification, error)
}

type service struct {
	repository repository.RepositoryI
	storage    object.Storage
	logger     *zap.Logger
}

// NewService initiates a service instance
func NewService(r repository.RepositoryI, storage object.Storage, logger *zap.Logger) Service {
	return &service{
		repository: r,
		storage:    storage,
		logger:     logger,
	}
}
