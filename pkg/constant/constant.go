package constant

const (
	_  = iota
	KB = 1 << (10 * iota)
	MB
	GB
	TB
)

// MaxUploadFileSize is the per-file cap for submitted documents.
const MaxUploadFileSize = 5 * MB

// DefaultGroupName is used when a job posting references a company group
// that no longer resolves and a fallback group has to be provisioned.
const DefaultGroupName = "Hiring Team"

// DocumentTag classifies an uploaded file within a submission.
type DocumentTag string

var (
	ResumeTag DocumentTag = "resume"
	CareerTag DocumentTag = "career"
)

// AllowedUploadMIMETypes maps the accepted document MIME types to the file
// extension used when storing them.
var AllowedUploadMIMETypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"text/plain": ".txt",
}
