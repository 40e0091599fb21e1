package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"

	"github.com/hirebridge/recruit-backend/pkg/constant"
	"github.com/hirebridge/recruit-backend/pkg/repository/object"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

// FileUpload carries one uploaded document through validation and storage.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Content     []byte
}

// uploadedDocument pairs the original filename with its stored public URL.
type uploadedDocument struct {
	Name string
	URL  string
}

// ingestDocuments validates and persists the submitted documents. All
// validation violations across both groups are aggregated into a single
// error before anything is uploaded, so a rejected batch leaves no orphan
// blob behind.
func (s *service) ingestDocuments(ctx context.Context, candidateUID uuid.UUID, resumeFiles, careerFiles []FileUpload) (resumes, careers []uploadedDocument, err error) {
	var violations []string
	for _, f := range resumeFiles {
		violations = append(violations, validateUpload(f)...)
	}
	for _, f := range careerFiles {
		violations = append(violations, validateUpload(f)...)
	}
	if len(violations) > 0 {
		err := errors.Wrap(errdomain.ErrFileRejected, strings.Join(violations, "; "))
		return nil, nil, errors.WithHint(err, strings.Join(violations, "\n"))
	}

	now := time.Now().UTC()

	resumes, err = s.uploadGroup(ctx, candidateUID, constant.ResumeTag, resumeFiles, now)
	if err != nil {
		return nil, nil, err
	}
	careers, err = s.uploadGroup(ctx, candidateUID, constant.CareerTag, careerFiles, now)
	if err != nil {
		return nil, nil, err
	}

	return resumes, careers, nil
}

func (s *service) uploadGroup(ctx context.Context, candidateUID uuid.UUID, tag constant.DocumentTag, files []FileUpload, uploadedAt time.Time) ([]uploadedDocument, error) {
	docs := make([]uploadedDocument, 0, len(files))
	for i, f := range files {
		contentType := normalizeContentType(f.ContentType)
		path := object.DocumentPath(candidateUID, tag, uploadedAt, i, uploadExtension(f))

		url, err := s.storage.UploadFile(ctx, path, f.Content, contentType)
		if err != nil {
			err = errors.Wrapf(err, "uploading %s document %q", tag, f.Name)
			return nil, errors.WithHint(err, "Your documents could not be stored. Please try again later.")
		}
		docs = append(docs, uploadedDocument{Name: f.Name, URL: url})
	}
	return docs, nil
}

// validateUpload returns the user-facing violations for a single file.
func validateUpload(f FileUpload) []string {
	var violations []string

	size := f.Size
	if size == 0 {
		size = int64(len(f.Content))
	}
	if size > constant.MaxUploadFileSize {
		violations = append(violations, fmt.Sprintf("%s exceeds the 5 MB size limit", f.Name))
	}

	if _, ok := constant.AllowedUploadMIMETypes[normalizeContentType(f.ContentType)]; !ok {
		violations = append(violations, fmt.Sprintf("%s has an unsupported file type (%s)", f.Name, f.ContentType))
	}

	return violations
}

// uploadExtension derives the stored file extension from the declared MIME
// type, falling back to the original filename's extension and finally to a
// generic binary extension.
func uploadExtension(f FileUpload) string {
	if ext, ok := constant.AllowedUploadMIMETypes[normalizeContentType(f.ContentType)]; ok {
		return ext
	}
	if ext := filepath.Ext(f.Name); ext != "" {
		return ext
	}
	return ".bin"
}

func normalizeContentType(contentType string) string {
	contentType, _, _ = strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(contentType))
}
