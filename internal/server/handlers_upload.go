package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/hr-pulse/internal/storage"
	"github.com/jonathan/hr-pulse/internal/types"
	"go.uber.org/zap"
)

// multipart overhead allowed on top of the file limit
const uploadFormSlack = 1 << 20

// handleUpload handles POST /upload with a multipart "file" field.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.UploadMaxBytes+uploadFormSlack)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, maxErr)
			return
		}
		s.writeError(w, &ErrMalformedBody{Cause: err})
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "file", Message: "is required"})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	if header.Size > s.cfg.UploadMaxBytes {
		s.writeError(w, &storage.TooLargeError{Limit: s.cfg.UploadMaxBytes})
		return
	}

	name, err := storage.UploadName(header.Filename)
	if err != nil {
		s.writeError(w, &ErrValidation{Field: "file", Message: "has no usable file name"})
		return
	}

	if s.files == nil {
		s.writeError(w, errors.New("upload storage not configured"))
		return
	}

	obj, err := s.files.Save(r.Context(), name, file)
	if err != nil {
		s.writeError(w, fmt.Errorf("failed to store upload: %w", err))
		return
	}

	s.log.Info("file uploaded", zap.String("name", obj.Name), zap.Int64("size", obj.Size))
	s.jsonResponse(w, http.StatusOK, types.UploadResponse{
		Message:  fmt.Sprintf("File '%s' uploaded successfully.", header.Filename),
		Filename: obj.Name,
		Path:     obj.Path,
		Size:     obj.Size,
	})
}
