package service

import (
	"context"

	"github.com/gofrs/uuid"

	"github.com/hirebridge/recruit-backend/pkg/repository"
	"github.com/hirebridge/recruit-backend/pkg/resource"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

// GetApplication returns one of the candidate's own applications.
func (s *service) GetApplication(ctx context.Context, identity resource.CandidateIdentity, applicationUID uuid.UUID) (*repository.Application, error) {
	if identity.IsZero() {
		return nil, errdomain.ErrUnauthenticated
	}

	application, err := s.repository.GetApplicationByUID(ctx, applicationUID)
	if err != nil {
		return nil, err
	}
	if application.CandidateUID != identity.UID {
		return nil, errors.Wrapf(errdomain.ErrNoPermission, "application %s", applicationUID)
	}
	return application, nil
}

// ListApplications returns the candidate's applications, newest first.
func (s *service) ListApplications(ctx context.Context, identity resource.CandidateIdentity) ([]*repository.Application, error) {
	if identity.IsZero() {
		return nil, errdomain.ErrUnauthenticated
	}
	return s.repository.ListApplicationsByCandidate(ctx, identity.UID)
}

// ListRoomMessages returns the latest messages of a room the candidate
// belongs to.
func (s *service) ListRoomMessages(ctx context.Context, identity resource.CandidateIdentity, roomUID uuid.UUID, limit int) ([]*repository.Message, error) {
	if identity.IsZero() {
		return nil, errdomain.ErrUnauthenticated
	}

	room, err := s.repository.GetRoomByUID(ctx, roomUID)
	if err != nil {
		return nil, err
	}
	if room.CandidateUID != identity.UID {
		return nil, errors.Wrapf(errdomain.ErrNoPermission, "room %s", roomUID)
	}

	return s.repository.ListMessagesByRoom(ctx, roomUID, limit)
}

// ListNotifications returns the latest notifications for a company user.
// This powers the company-side private surface.
func (s *service) ListNotifications(ctx context.Context, companyUserUID uuid.UUID, limit int) ([]*repository.Notification, error) {
	if companyUserUID.IsNil() {
		return nil, errors.Wrap(errdomain.ErrInvalidArgument, "missing company user UID")
	}
	return s.repository.ListNotificationsByCompanyUser(ctx, companyUserUID, limit)
}
