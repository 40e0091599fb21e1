package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofrs/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	qt "github.com/frankban/quicktest"

	"github.com/hirebridge/recruit-backend/pkg/constant"
	"github.com/hirebridge/recruit-backend/pkg/repository"
	"github.com/hirebridge/recruit-backend/pkg/resource"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"
)

// fakeStorage records uploads in memory and serves deterministic URLs.
type fakeStorage struct {
	mu          sync.Mutex
	objects     map[string][]byte
	failUploads bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) UploadFile(_ context.Context, path string, content []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUploads {
		return "", errors.New("storage unavailable")
	}
	f.objects[path] = append([]byte(nil), content...)
	return "https://blob.test/documents/" + path, nil
}

func (f *fakeStorage) DeleteFile(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, path)
	return nil
}

func (f *fakeStorage) GetFile(_ context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.objects[path]
	if !ok {
		return nil, errors.Newf("object %s not found", path)
	}
	return content, nil
}

func (f *fakeStorage) GetBucket() string {
	return "documents"
}

func (f *fakeStorage) objectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

func newTestDB(c *qt.C) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	})
	c.Assert(err, qt.IsNil)

	sqlDB, err := db.DB()
	c.Assert(err, qt.IsNil)
	// A single connection keeps every statement on the same in-memory
	// database.
	sqlDB.SetMaxOpenConns(1)
	c.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
		&repository.Candidate{},
		&repository.CompanyGroup{},
		&repository.CompanyUser{},
		&repository.CompanyGroupPermission{},
		&repository.JobPosting{},
		&repository.Application{},
		&repository.SelectionProgress{},
		&repository.Room{},
		&repository.Message{},
		&repository.Notification{},
	)
	c.Assert(err, qt.IsNil)

	return db
}

// fixture wires a service against sqlite and seeds one candidate, one company
// account with a group of two members, and one published job posting.
type fixture struct {
	db      *gorm.DB
	storage *fakeStorage
	svc     *service

	candidate repository.Candidate
	account   uuid.UUID
	group     repository.CompanyGroup
	users     []repository.CompanyUser
	job       repository.JobPosting
}

func newFixture(c *qt.C) *fixture {
	db := newTestDB(c)
	storage := newFakeStorage()
	svc := NewService(repository.NewRepository(db), storage, zap.NewNop()).(*service)

	f := &fixture{
		db:      db,
		storage: storage,
		svc:     svc,
		account: uuid.Must(uuid.NewV4()),
	}

	f.candidate = repository.Candidate{
		UID:         uuid.Must(uuid.NewV4()),
		Email:       "jordan@example.com",
		DisplayName: "Jordan",
	}
	c.Assert(db.Create(&f.candidate).Error, qt.IsNil)

	f.group = repository.CompanyGroup{
		UID:               uuid.Must(uuid.NewV4()),
		CompanyAccountUID: f.account,
		Name:              "Engineering",
	}
	c.Assert(db.Create(&f.group).Error, qt.IsNil)

	for i, email := range []string{"recruiter@acme.test", "manager@acme.test"} {
		user := repository.CompanyUser{
			UID:               uuid.Must(uuid.NewV4()),
			CompanyAccountUID: f.account,
			Email:             email,
			DisplayName:       email,
			CreateTime:        time.Now().UTC().Add(time.Duration(i) * time.Second),
		}
		c.Assert(db.Create(&user).Error, qt.IsNil)
		f.users = append(f.users, user)

		permission := repository.CompanyGroupPermission{
			UID:             uuid.Must(uuid.NewV4()),
			CompanyGroupUID: f.group.UID,
			CompanyUserUID:  user.UID,
			Role:            "member",
			CreateTime:      user.CreateTime,
		}
		c.Assert(db.Create(&permission).Error, qt.IsNil)
	}

	f.job = repository.JobPosting{
		UID:               uuid.Must(uuid.NewV4()),
		Title:             "Backend Engineer",
		CompanyAccountUID: f.account,
		CompanyGroupUID:   f.group.UID,
		Status:            repository.JobPostingStatusPublished,
		Visibility:        repository.JobPostingVisibilityPublic,
	}
	c.Assert(db.Create(&f.job).Error, qt.IsNil)

	return f
}

func (f *fixture) identity() resource.CandidateIdentity {
	return resource.CandidateIdentity{UID: f.candidate.UID, Email: f.candidate.Email}
}

func pdfUpload(name string, size int) FileUpload {
	return FileUpload{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(size),
		Content:     make([]byte, size),
	}
}

func TestSubmitApplication(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	result, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
		Message:       "Looking forward to hearing from you.",
		ResumeFiles:   []FileUpload{pdfUpload("resume-a.pdf", 1024), pdfUpload("resume-b.pdf", 2048)},
		CareerFiles:   []FileUpload{pdfUpload("career.pdf", 512)},
	})
	c.Assert(err, qt.IsNil)
	c.Check(result.ApplicationUID.IsNil(), qt.IsFalse)
	c.Check(result.JobTitle, qt.Equals, "Backend Engineer")
	c.Check(result.Status, qt.Equals, repository.ApplicationStatusSent)
	c.Check(result.AppliedAt.IsZero(), qt.IsFalse)

	c.Check(f.storage.objectCount(), qt.Equals, 3)

	var application repository.Application
	c.Assert(f.db.First(&application, "uid = ?", result.ApplicationUID).Error, qt.IsNil)
	c.Check(application.CandidateUID, qt.Equals, f.candidate.UID)
	c.Check(application.JobPostingUID, qt.Equals, f.job.UID)
	c.Check(application.CompanyGroupUID, qt.Equals, f.group.UID)
	c.Check(application.CompanyUserUID, qt.Equals, f.users[0].UID)
	c.Check(application.Message, qt.Equals, "Looking forward to hearing from you.")
	c.Check(application.ResumeURL, qt.Contains, "/resume/")
	c.Check(application.CareerSheetURL, qt.Contains, "/career/")

	var progress repository.SelectionProgress
	c.Assert(f.db.First(&progress, "application_uid = ?", application.UID).Error, qt.IsNil)
	c.Check(progress.CandidateUID, qt.Equals, f.candidate.UID)
	c.Check(progress.Memo, qt.Contains, "Backend Engineer")
	c.Check(progress.DocumentScreeningResult.Valid, qt.IsFalse)

	var rooms []repository.Room
	c.Assert(f.db.Find(&rooms).Error, qt.IsNil)
	c.Assert(rooms, qt.HasLen, 1)
	c.Check(rooms[0].Type, qt.Equals, repository.RoomTypeDirect)
	c.Check(rooms[0].CandidateUID, qt.Equals, f.candidate.UID)
	participants, err := rooms[0].Participants()
	c.Assert(err, qt.IsNil)
	c.Check(participants, qt.DeepEquals, []uuid.UUID{f.users[0].UID, f.users[1].UID})

	var messages []repository.Message
	c.Assert(f.db.Find(&messages).Error, qt.IsNil)
	c.Assert(messages, qt.HasLen, 1)
	msg := messages[0]
	c.Check(msg.RoomUID, qt.Equals, rooms[0].UID)
	c.Check(msg.SenderType, qt.Equals, repository.MessageSenderCandidate)
	c.Check(*msg.SenderCandidateUID, qt.Equals, f.candidate.UID)
	c.Check(msg.Type, qt.Equals, repository.MessageTypeApplication)
	c.Check(msg.Subject, qt.Equals, "New application: Backend Engineer")
	c.Check(msg.Body, qt.Contains, "Looking forward to hearing from you.")
	c.Check(msg.Body, qt.Contains, "resume-a.pdf")
	c.Check(msg.Body, qt.Contains, "career.pdf")
	c.Check(msg.SentTime.IsZero(), qt.IsFalse)

	urls, err := msg.AttachedFileURLs()
	c.Assert(err, qt.IsNil)
	c.Assert(urls, qt.HasLen, 3)
	c.Check(urls[0], qt.Contains, "/resume/")
	c.Check(urls[1], qt.Contains, "/resume/")
	c.Check(urls[2], qt.Contains, "/career/")

	var notifications []repository.Notification
	c.Assert(f.db.Order("create_time").Find(&notifications).Error, qt.IsNil)
	c.Assert(notifications, qt.HasLen, 2)
	for _, n := range notifications {
		c.Check(n.MessageUID, qt.Equals, msg.UID)
		c.Check(n.Type, qt.Equals, repository.NotificationTypeNewApplication)
		c.Check(n.ReadTime.Valid, qt.IsFalse)
	}
}

func TestSubmitApplication_NoDocuments(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	result, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
	})
	c.Assert(err, qt.IsNil)
	c.Check(result.Status, qt.Equals, repository.ApplicationStatusSent)
	c.Check(f.storage.objectCount(), qt.Equals, 0)

	var application repository.Application
	c.Assert(f.db.First(&application, "uid = ?", result.ApplicationUID).Error, qt.IsNil)
	c.Check(application.ResumeURL, qt.Equals, "")
	c.Check(application.CareerSheetURL, qt.Equals, "")

	var msg repository.Message
	c.Assert(f.db.First(&msg).Error, qt.IsNil)
	c.Check(msg.Body, qt.Contains, "(none)")
}

func TestSubmitApplication_Duplicate(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
		ResumeFiles:   []FileUpload{pdfUpload("resume.pdf", 1024)},
	})
	c.Assert(err, qt.IsNil)
	uploaded := f.storage.objectCount()

	_, err = f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
		ResumeFiles:   []FileUpload{pdfUpload("resume.pdf", 1024)},
	})
	c.Assert(errors.Is(err, errdomain.ErrAlreadyExists), qt.IsTrue)
	c.Check(errors.FlattenHints(err), qt.Contains, "already applied")

	// The rejected resubmission must not write anything.
	c.Check(f.storage.objectCount(), qt.Equals, uploaded)
	var count int64
	c.Assert(f.db.Model(&repository.Application{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(1))
	c.Assert(f.db.Model(&repository.Message{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(1))
}

func TestSubmitApplication_RejectedFiles(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
		ResumeFiles: []FileUpload{
			pdfUpload("fine.pdf", 1024),
			{Name: "huge.pdf", ContentType: "application/pdf", Size: constant.MaxUploadFileSize + 1},
		},
		CareerFiles: []FileUpload{
			{Name: "script.sh", ContentType: "application/x-sh", Size: 100},
		},
	})
	c.Assert(errors.Is(err, errdomain.ErrFileRejected), qt.IsTrue)

	// Violations from both groups are reported together.
	hints := errors.FlattenHints(err)
	c.Check(hints, qt.Contains, "huge.pdf")
	c.Check(hints, qt.Contains, "script.sh")

	// A rejected batch uploads nothing and leaves no application behind.
	c.Check(f.storage.objectCount(), qt.Equals, 0)
	var count int64
	c.Assert(f.db.Model(&repository.Application{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(0))
}

func TestSubmitApplication_JobChecks(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	c.Run("unauthenticated", func(c *qt.C) {
		f := newFixture(c)
		_, err := f.svc.SubmitApplication(ctx, resource.CandidateIdentity{}, SubmitApplicationParams{
			JobPostingUID: f.job.UID,
		})
		c.Check(errors.Is(err, errdomain.ErrUnauthenticated), qt.IsTrue)
	})

	c.Run("missing job UID", func(c *qt.C) {
		f := newFixture(c)
		_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{})
		c.Check(errors.Is(err, errdomain.ErrInvalidArgument), qt.IsTrue)
	})

	c.Run("unknown job", func(c *qt.C) {
		f := newFixture(c)
		_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
			JobPostingUID: uuid.Must(uuid.NewV4()),
		})
		c.Check(errors.Is(err, errdomain.ErrNotFound), qt.IsTrue)
	})

	c.Run("deleted job", func(c *qt.C) {
		f := newFixture(c)
		now := time.Now().UTC()
		c.Assert(f.db.Model(&repository.JobPosting{}).
			Where("uid = ?", f.job.UID).
			Update("delete_time", &now).Error, qt.IsNil)
		_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
			JobPostingUID: f.job.UID,
		})
		c.Check(errors.Is(err, errdomain.ErrNotFound), qt.IsTrue)
	})

	c.Run("unpublished job", func(c *qt.C) {
		f := newFixture(c)
		c.Assert(f.db.Model(&repository.JobPosting{}).
			Where("uid = ?", f.job.UID).
			Update("status", repository.JobPostingStatusDraft).Error, qt.IsNil)
		_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
			JobPostingUID: f.job.UID,
		})
		c.Check(errors.Is(err, errdomain.ErrJobNotPublished), qt.IsTrue)
	})
}

func TestSubmitApplication_NoCompanyUser(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	c.Assert(f.db.Where("company_account_uid = ?", f.account).
		Delete(&repository.CompanyUser{}).Error, qt.IsNil)

	_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
	})
	c.Assert(errors.Is(err, errdomain.ErrNoCompanyUser), qt.IsTrue)

	var count int64
	c.Assert(f.db.Model(&repository.Application{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(0))
}

func TestSubmitApplication_FallbackGroup(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	danglingGroupUID := uuid.Must(uuid.NewV4())
	c.Assert(f.db.Model(&repository.JobPosting{}).
		Where("uid = ?", f.job.UID).
		Update("company_group_uid", danglingGroupUID).Error, qt.IsNil)

	result, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
	})
	c.Assert(err, qt.IsNil)

	var application repository.Application
	c.Assert(f.db.First(&application, "uid = ?", result.ApplicationUID).Error, qt.IsNil)
	c.Check(application.CompanyGroupUID, qt.Not(qt.Equals), danglingGroupUID)
	c.Check(application.CompanyGroupUID, qt.Not(qt.Equals), f.group.UID)

	var fallback repository.CompanyGroup
	c.Assert(f.db.First(&fallback, "uid = ?", application.CompanyGroupUID).Error, qt.IsNil)
	c.Check(fallback.Name, qt.Equals, constant.DefaultGroupName)
	c.Check(fallback.CompanyAccountUID, qt.Equals, f.account)

	// The fallback group has no members yet, so the room carries an empty
	// participant snapshot and no notifications go out.
	var room repository.Room
	c.Assert(f.db.First(&room).Error, qt.IsNil)
	participants, err := room.Participants()
	c.Assert(err, qt.IsNil)
	c.Check(participants, qt.HasLen, 0)

	var count int64
	c.Assert(f.db.Model(&repository.Notification{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(0))
}

func TestSubmitApplication_ReusesExistingRoom(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	existing, err := f.svc.repository.CreateRoom(ctx, repository.Room{
		Type:            repository.RoomTypeDirect,
		CandidateUID:    f.candidate.UID,
		CompanyGroupUID: f.group.UID,
		JobPostingUID:   f.job.UID,
	})
	c.Assert(err, qt.IsNil)
	c.Assert(f.svc.repository.UpdateRoomParticipants(ctx, existing.UID, []uuid.UUID{f.users[0].UID}), qt.IsNil)

	_, err = f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
	})
	c.Assert(err, qt.IsNil)

	var count int64
	c.Assert(f.db.Model(&repository.Room{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(1))

	// Reused rooms keep their participant snapshot untouched.
	room, err := f.svc.repository.GetRoomByUID(ctx, existing.UID)
	c.Assert(err, qt.IsNil)
	participants, err := room.Participants()
	c.Assert(err, qt.IsNil)
	c.Check(participants, qt.DeepEquals, []uuid.UUID{f.users[0].UID})

	var msg repository.Message
	c.Assert(f.db.First(&msg).Error, qt.IsNil)
	c.Check(msg.RoomUID, qt.Equals, existing.UID)
}

func TestSubmitApplication_DuplicateRoomsPickNewest(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	now := time.Now().UTC()
	older := repository.Room{
		UID:             uuid.Must(uuid.NewV4()),
		Type:            repository.RoomTypeDirect,
		CandidateUID:    f.candidate.UID,
		CompanyGroupUID: f.group.UID,
		JobPostingUID:   f.job.UID,
		CreateTime:      now.Add(-time.Hour),
	}
	newer := repository.Room{
		UID:             uuid.Must(uuid.NewV4()),
		Type:            repository.RoomTypeDirect,
		CandidateUID:    f.candidate.UID,
		CompanyGroupUID: f.group.UID,
		JobPostingUID:   f.job.UID,
		CreateTime:      now,
	}
	c.Assert(f.db.Create(&older).Error, qt.IsNil)
	c.Assert(f.db.Create(&newer).Error, qt.IsNil)

	_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
	})
	c.Assert(err, qt.IsNil)

	var count int64
	c.Assert(f.db.Model(&repository.Room{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(2))

	var msg repository.Message
	c.Assert(f.db.First(&msg).Error, qt.IsNil)
	c.Check(msg.RoomUID, qt.Equals, newer.UID)
}

func TestSubmitApplication_BestEffortWrites(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	c.Run("selection progress failure does not block the submission", func(c *qt.C) {
		f := newFixture(c)
		c.Assert(f.db.Migrator().DropTable(&repository.SelectionProgress{}), qt.IsNil)

		result, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
			JobPostingUID: f.job.UID,
		})
		c.Assert(err, qt.IsNil)
		c.Check(result.Status, qt.Equals, repository.ApplicationStatusSent)
	})

	c.Run("notification failure does not block the submission", func(c *qt.C) {
		f := newFixture(c)
		c.Assert(f.db.Migrator().DropTable(&repository.Notification{}), qt.IsNil)

		result, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
			JobPostingUID: f.job.UID,
		})
		c.Assert(err, qt.IsNil)
		c.Check(result.Status, qt.Equals, repository.ApplicationStatusSent)

		var count int64
		c.Assert(f.db.Model(&repository.Message{}).Count(&count).Error, qt.IsNil)
		c.Check(count, qt.Equals, int64(1))
	})
}

func TestSubmitApplication_StorageFailure(t *testing.T) {
	c := qt.New(t)
	ctx := context.Background()

	f := newFixture(c)
	f.storage.failUploads = true

	_, err := f.svc.SubmitApplication(ctx, f.identity(), SubmitApplicationParams{
		JobPostingUID: f.job.UID,
		ResumeFiles:   []FileUpload{pdfUpload("resume.pdf", 1024)},
	})
	c.Assert(err, qt.IsNotNil)
	c.Check(strings.Contains(errors.FlattenHints(err), "could not be stored"), qt.IsTrue)

	// Nothing past the upload step ran.
	var count int64
	c.Assert(f.db.Model(&repository.Application{}).Count(&count).Error, qt.IsNil)
	c.Check(count, qt.Equals, int64(0))
}
