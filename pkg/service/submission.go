package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/hirebridge/recruit-backend/pkg/constant"
	"github.com/hirebridge/recruit-backend/pkg/repository"
	"github.com/hirebridge/recruit-backend/pkg/resource"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

const tryAgainHint = "Your application could not be submitted. Please try again later."

// SubmitApplicationParams is the input of the submission workflow. The
// candidate identity is passed separately, already resolved by the caller.
type SubmitApplicationParams struct {
	JobPostingUID uuid.UUID
	Message       string
	ResumeFiles   []FileUpload
	CareerFiles   []FileUpload
}

// SubmitApplicationResult is returned on a successful submission.
type SubmitApplicationResult struct {
	ApplicationUID uuid.UUID                    `json:"application_uid"`
	JobTitle       string                       `json:"job_title"`
	Status         repository.ApplicationStatus `json:"status"`
	AppliedAt      time.Time                    `json:"applied_at"`
}

// SubmitApplication runs the submission workflow for one candidate action:
// job and duplicate checks, document ingestion, group resolution,
// application and selection-progress rows, room resolution, the application
// message, and the notification fan-out.
//
// The sequence is deliberately linear and non-transactional: a failure after
// the application row is committed leaves that row in place. Resubmission
// then stops at the duplicate check. SelectionProgress and Notification
// writes are best-effort and never change the reported outcome.
func (s *service) SubmitApplication(ctx context.Context, identity resource.CandidateIdentity, params SubmitApplicationParams) (*SubmitApplicationResult, error) {
	if identity.IsZero() {
		return nil, errdomain.ErrUnauthenticated
	}
	if params.JobPostingUID.IsNil() {
		err := errors.Wrap(errdomain.ErrInvalidArgument, "missing job posting UID")
		return nil, errors.WithHint(err, "A job identifier is required.")
	}

	job, err := s.checkJobAndDuplicate(ctx, identity.UID, params.JobPostingUID)
	if err != nil {
		return nil, err
	}

	resumes, careers, err := s.ingestDocuments(ctx, identity.UID, params.ResumeFiles, params.CareerFiles)
	if err != nil {
		return nil, err
	}

	group, err := s.resolveCompanyGroup(ctx, job)
	if err != nil {
		return nil, err
	}

	companyUser, err := s.repository.GetFirstCompanyUserByAccount(ctx, job.CompanyAccountUID)
	if err != nil {
		return nil, errors.WithHint(err, tryAgainHint)
	}

	application, err := s.repository.CreateApplication(ctx, repository.Application{
		CandidateUID:      identity.UID,
		JobPostingUID:     job.UID,
		CompanyAccountUID: job.CompanyAccountUID,
		CompanyGroupUID:   group.UID,
		CompanyUserUID:    companyUser.UID,
		ResumeURL:         firstURL(resumes),
		CareerSheetURL:    firstURL(careers),
		Message:           params.Message,
		Status:            repository.ApplicationStatusSent,
	})
	if err != nil {
		if errors.Is(err, errdomain.ErrAlreadyExists) {
			return nil, errors.WithHint(err, "You have already applied to this job.")
		}
		return nil, errors.WithHint(err, tryAgainHint)
	}

	// Best-effort: a missing selection progress row is recoverable by the
	// company side, so failure is logged and the submission continues.
	if _, err := s.repository.CreateSelectionProgress(ctx, repository.SelectionProgress{
		CandidateUID:    identity.UID,
		CompanyGroupUID: group.UID,
		ApplicationUID:  application.UID,
		JobPostingUID:   job.UID,
		Memo:            fmt.Sprintf("Applied via job posting: %s", job.Title),
	}); err != nil {
		s.logger.Error("Failed to create selection progress",
			zap.String("applicationUID", application.UID.String()),
			zap.Error(err))
	}

	room, created, err := s.resolveRoom(ctx, identity.UID, group.UID, job.UID)
	if err != nil {
		return nil, errors.WithHint(err, tryAgainHint)
	}

	if created {
		memberUIDs, err := s.repository.ListCompanyUserUIDsByGroup(ctx, group.UID)
		if err == nil {
			err = s.repository.UpdateRoomParticipants(ctx, room.UID, memberUIDs)
		}
		if err != nil {
			// The room row stays behind without participants. Accepted
			// inconsistency; the next submission will find and reuse it.
			err = errors.Wrapf(err, "populating participants of room %s", room.UID)
			return nil, errors.WithHint(err, tryAgainHint)
		}
	}

	message, err := s.sendApplicationMessage(ctx, identity.UID, room.UID, job.Title, params.Message, resumes, careers)
	if err != nil {
		return nil, errors.WithHint(err, tryAgainHint)
	}

	s.notifyGroupMembers(ctx, group.UID, message.UID)

	return &SubmitApplicationResult{
		ApplicationUID: application.UID,
		JobTitle:       job.Title,
		Status:         application.Status,
		AppliedAt:      application.CreateTime,
	}, nil
}

// checkJobAndDuplicate loads the job posting and checks for a prior
// application by the same candidate. The two queries run concurrently.
func (s *service) checkJobAndDuplicate(ctx context.Context, candidateUID, jobPostingUID uuid.UUID) (*repository.JobPosting, error) {
	var job *repository.JobPosting

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		fetched, err := s.repository.GetJobPostingByUID(egCtx, jobPostingUID)
		if err != nil {
			if errors.Is(err, errdomain.ErrNotFound) {
				return errors.WithHint(err, "This job posting could not be found.")
			}
			return errors.WithHint(err, tryAgainHint)
		}
		if fetched.Status != repository.JobPostingStatusPublished {
			return errors.Wrapf(errdomain.ErrJobNotPublished, "job posting %s is %s", fetched.UID, fetched.Status)
		}
		job = fetched
		return nil
	})
	eg.Go(func() error {
		_, err := s.repository.GetApplicationByCandidateAndJob(egCtx, candidateUID, jobPostingUID)
		if err == nil {
			err := errors.Wrap(errdomain.ErrAlreadyExists, "prior application")
			return errors.WithHint(err, "You have already applied to this job.")
		}
		if errors.Is(err, errdomain.ErrNotFound) {
			return nil
		}
		return errors.WithHint(err, tryAgainHint)
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return job, nil
}

// resolveCompanyGroup verifies the job's company group exists, provisioning
// a fallback group under the job's account when the reference is dangling.
func (s *service) resolveCompanyGroup(ctx context.Context, job *repository.JobPosting) (*repository.CompanyGroup, error) {
	group, err := s.repository.GetCompanyGroupByUID(ctx, job.CompanyGroupUID)
	if err == nil {
		return group, nil
	}
	if !errors.Is(err, errdomain.ErrNotFound) {
		return nil, errors.WithHint(err, tryAgainHint)
	}

	s.logger.Warn("Job posting references a missing company group, provisioning a fallback",
		zap.String("jobPostingUID", job.UID.String()),
		zap.String("companyGroupUID", job.CompanyGroupUID.String()))

	group, err = s.repository.CreateCompanyGroup(ctx, repository.CompanyGroup{
		CompanyAccountUID: job.CompanyAccountUID,
		Name:              constant.DefaultGroupName,
	})
	if err != nil {
		err = errors.Wrap(err, "provisioning fallback company group")
		return nil, errors.WithHint(err, tryAgainHint)
	}
	return group, nil
}

// sendApplicationMessage posts the system-templated application message into
// the room, attaching every stored document URL with resume URLs first.
func (s *service) sendApplicationMessage(ctx context.Context, candidateUID, roomUID uuid.UUID, jobTitle, candidateMessage string, resumes, careers []uploadedDocument) (*repository.Message, error) {
	urls := make([]string, 0, len(resumes)+len(careers))
	for _, d := range resumes {
		urls = append(urls, d.URL)
	}
	for _, d := range careers {
		urls = append(urls, d.URL)
	}
	encodedURLs, err := json.Marshal(urls)
	if err != nil {
		return nil, errors.Wrap(err, "encoding attachment URLs")
	}

	senderUID := candidateUID
	message, err := s.repository.CreateMessage(ctx, repository.Message{
		RoomUID:            roomUID,
		SenderType:         repository.MessageSenderCandidate,
		SenderCandidateUID: &senderUID,
		Type:               repository.MessageTypeApplication,
		Subject:            fmt.Sprintf("New application: %s", jobTitle),
		Body:               applicationMessageBody(jobTitle, candidateMessage, resumes, careers),
		FileURLs:           datatypes.JSON(encodedURLs),
		Status:             repository.MessageStatusSent,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sending application message")
	}
	return message, nil
}

// notifyGroupMembers writes one notification row per group member. Failures
// are swallowed with a log entry and never affect the submission outcome.
func (s *service) notifyGroupMembers(ctx context.Context, companyGroupUID, messageUID uuid.UUID) {
	memberUIDs, err := s.repository.ListCompanyUserUIDsByGroup(ctx, companyGroupUID)
	if err != nil {
		s.logger.Warn("Failed to list group members for notification fan-out",
			zap.String("companyGroupUID", companyGroupUID.String()),
			zap.Error(err))
		return
	}

	for _, memberUID := range memberUIDs {
		if _, err := s.repository.CreateNotification(ctx, repository.Notification{
			CompanyUserUID: memberUID,
			MessageUID:     messageUID,
			Type:           repository.NotificationTypeNewApplication,
		}); err != nil {
			s.logger.Warn("Failed to create notification",
				zap.String("companyUserUID", memberUID.String()),
				zap.String("messageUID", messageUID.String()),
				zap.Error(err))
		}
	}
}

func applicationMessageBody(jobTitle, candidateMessage string, resumes, careers []uploadedDocument) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new application has been submitted for %q.\n", jobTitle)

	if candidateMessage != "" {
		b.WriteString("\n")
		b.WriteString(candidateMessage)
		b.WriteString("\n")
	}

	b.WriteString("\nResume documents:\n")
	writeDocumentNames(&b, resumes)
	b.WriteString("\nCareer documents:\n")
	writeDocumentNames(&b, careers)

	return b.String()
}

func writeDocumentNames(b *strings.Builder, docs []uploadedDocument) {
	if len(docs) == 0 {
		b.WriteString("  (none)\n")
		return
	}
	for _, d := range docs {
		fmt.Fprintf(b, "  - %s\n", d.Name)
	}
}

func firstURL(docs []uploadedDocument) string {
	if len(docs) == 0 {
		return ""
	}
	return docs[0].URL
}
