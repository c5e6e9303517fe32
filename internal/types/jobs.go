package types

// Query defaults for GET /jobs.
const (
	DefaultJobsLimit = 10
	MaxJobsLimit     = 1000
)

// JobsQuery holds the parsed query string of GET /jobs.
type JobsQuery struct {
	Limit int    `json:"limit" validate:"gte=1,lte=1000"`
	Skill string `json:"skill" validate:"max=100"`
}

// Validate validates the JobsQuery using the validator.
func (q *JobsQuery) Validate() error {
	return Validator().Struct(q)
}

// UploadResponse is the success body of POST /upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
}

// Database states reported by GET /ready.
const (
	DatabaseOK          = "ok"
	DatabaseUnavailable = "unavailable"
)

// ReadyResponse is the body of GET /ready.
type ReadyResponse struct {
	Status      string `json:"status"`
	Fingerprint string `json:"fingerprint,omitempty"`
	TrainedAt   string `json:"trained_at,omitempty"`
	Database    string `json:"database,omitempty"`
	Error       string `json:"error,omitempty"`
}
