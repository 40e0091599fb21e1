package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hirebridge/recruit-backend/pkg/middleware"
	"github.com/hirebridge/recruit-backend/pkg/service"

	errdomain "github.com/hirebridge/recruit-backend/pkg/errors"

	"github.com/cockroachdb/errors"
)

// Multipart form fields of the submission endpoint.
const (
	formFieldMessage     = "message"
	formFieldResumeFiles = "resume_files"
	formFieldCareerFiles = "career_files"
)

// PublicHandler serves the candidate-facing API.
type PublicHandler struct {
	service service.Service
}

func NewPublicHandler(s service.Service) *PublicHandler {
	return &PublicHandler{service: s}
}

// Register attaches the routes to the echo instance. The auth middleware is
// applied to every candidate-facing route. Notification listing is a
// company-side operation and stays off this surface; it gets a route once a
// company user auth layer exists.
func (h *PublicHandler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/v1/health", h.Health)

	v1 := e.Group("/v1", auth)
	v1.POST("/jobs/:jobUID/applications", h.SubmitApplication)
	v1.GET("/applications", h.ListApplications)
	v1.GET("/applications/:uid", h.GetApplication)
	v1.GET("/rooms/:uid/messages", h.ListRoomMessages)
}

func (h *PublicHandler) Health(c echo.Context) error {
	return JSON(c, http.StatusOK, map[string]string{"status": "ok"})
}

// SubmitApplication handles the multipart submission form and runs the
// submission workflow.
func (h *PublicHandler) SubmitApplication(c echo.Context) error {
	identity := middleware.GetCandidateIdentity(c)

	jobUID, err := uuid.FromString(c.Param("jobUID"))
	if err != nil {
		err := errors.Wrap(errdomain.ErrInvalidArgument, "malformed job UID")
		return errors.WithHint(err, "A valid job identifier is required.")
	}

	form, err := c.MultipartForm()
	if err != nil {
		err := errors.Wrap(errdomain.ErrInvalidArgument, "reading multipart form")
		return errors.WithHint(err, "The submission form could not be read.")
	}

	resumeFiles, err := readUploads(form, formFieldResumeFiles)
	if err != nil {
		return err
	}
	careerFiles, err := readUploads(form, formFieldCareerFiles)
	if err != nil {
		return err
	}

	result, err := h.service.SubmitApplication(c.Request().Context(), identity, service.SubmitApplicationParams{
		JobPostingUID: jobUID,
		Message:       c.FormValue(formFieldMessage),
		ResumeFiles:   resumeFiles,
		CareerFiles:   careerFiles,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, result)
}

func (h *PublicHandler) GetApplication(c echo.Context) error {
	identity := middleware.GetCandidateIdentity(c)

	applicationUID, err := uuid.FromString(c.Param("uid"))
	if err != nil {
		return errors.Wrap(errdomain.ErrInvalidArgument, "malformed application UID")
	}

	application, err := h.service.GetApplication(c.Request().Context(), identity, applicationUID)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, application)
}

func (h *PublicHandler) ListApplications(c echo.Context) error {
	identity := middleware.GetCandidateIdentity(c)

	applications, err := h.service.ListApplications(c.Request().Context(), identity)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, applications)
}

func (h *PublicHandler) ListRoomMessages(c echo.Context) error {
	identity := middleware.GetCandidateIdentity(c)

	roomUID, err := uuid.FromString(c.Param("uid"))
	if err != nil {
		return errors.Wrap(errdomain.ErrInvalidArgument, "malformed room UID")
	}

	messages, err := h.service.ListRoomMessages(c.Request().Context(), identity, roomUID, queryLimit(c))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, messages)
}

// readUploads drains the file parts of one multipart field into memory.
func readUploads(form *multipart.Form, field string) ([]service.FileUpload, error) {
	headers := form.File[field]
	uploads := make([]service.FileUpload, 0, len(headers))
	for _, header := range headers {
		upload, err := readUpload(header)
		if err != nil {
			err = errors.Wrapf(err, "reading uploaded file %q", header.Filename)
			return nil, errors.WithHint(err, "An uploaded file could not be read.")
		}
		uploads = append(uploads, upload)
	}
	return uploads, nil
}

func readUpload(header *multipart.FileHeader) (service.FileUpload, error) {
	f, err := header.Open()
	if err != nil {
		return service.FileUpload{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return service.FileUpload{}, err
	}

	return service.FileUpload{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     content,
	}, nil
}

func queryLimit(c echo.Context) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil {
		return 0
	}
	return limit
}
