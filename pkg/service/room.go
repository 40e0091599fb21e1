package service

import (
	"context"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"

	"github.com/hirebridge/recruit-backend/pkg/repository"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

// resolveRoom finds or creates the direct room between the candidate and the
// company group for the given job posting. It reports whether the room was
// created by this call, in which case the caller must populate the
// participant snapshot.
//
// The identifying tuple is intended-unique but duplicates can exist from
// before the unique index was introduced; reads tolerate them by picking the
// newest row. The read is repeated right before insert to narrow the race
// window, and a unique-constraint conflict on insert falls back to adopting
// the concurrently created row.
func (s *service) resolveRoom(ctx context.Context, candidateUID, companyGroupUID, jobPostingUID uuid.UUID) (*repository.Room, bool, error) {
	rooms, err := s.repository.ListRoomsByKeys(ctx, candidateUID, companyGroupUID, jobPostingUID, repository.RoomTypeDirect)
	if err != nil {
		return nil, false, err
	}

	if len(rooms) >= 2 {
		s.logger.Warn("Duplicate rooms found for identifying tuple, using the newest",
			zap.String("candidateUID", candidateUID.String()),
			zap.String("companyGroupUID", companyGroupUID.String()),
			zap.String("jobPostingUID", jobPostingUID.String()),
			zap.Int("count", len(rooms)))
		return rooms[0], false, nil
	}
	if len(rooms) == 1 {
		return rooms[0], false, nil
	}

	// Check once more right before insert in case a concurrent submission
	// created the room since the first read.
	rooms, err = s.repository.ListRoomsByKeys(ctx, candidateUID, companyGroupUID, jobPostingUID, repository.RoomTypeDirect)
	if err != nil {
		return nil, false, err
	}
	if len(rooms) > 0 {
		return rooms[0], false, nil
	}

	room, err := s.repository.CreateRoom(ctx, repository.Room{
		Type:            repository.RoomTypeDirect,
		CandidateUID:    candidateUID,
		CompanyGroupUID: companyGroupUID,
		JobPostingUID:   jobPostingUID,
	})
	if err != nil {
		if errors.Is(err, errdomain.ErrAlreadyExists) {
			rooms, listErr := s.repository.ListRoomsByKeys(ctx, candidateUID, companyGroupUID, jobPostingUID, repository.RoomTypeDirect)
			if listErr == nil && len(rooms) > 0 {
				return rooms[0], false, nil
			}
		}
		return nil, false, err
	}

	return room, true, nil
}
