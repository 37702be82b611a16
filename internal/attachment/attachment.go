// Package attachment validates and measures document attachments before they
// are stored.
package attachment

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/priku/tilitin/internal/model"
)

// ContentTypePDF is the default content type of an attachment.
const ContentTypePDF = "application/pdf"

const maxFilenameLen = 255

// FromFile builds an unsaved attachment for documentID. It fails with a
// model.ValidationError when data is empty or larger than
// model.MaxAttachmentSize. The page count is left unknown; see
// Inspector.Measure.
func FromFile(documentID int, filename string, data []byte, description string) (model.Attachment, error) {
	switch {
	case len(data) == 0:
		return model.Attachment{}, model.ValidationError{Entity: "attachment", Field: "data", Reason: "file is empty"}
	case len(data) > model.MaxAttachmentSize:
		return model.Attachment{}, model.ValidationError{Entity: "attachment", Field: "data",
			Reason: fmt.Sprintf("file is %d bytes, limit is %d", len(data), model.MaxAttachmentSize)}
	}
	return model.Attachment{
		DocumentID:  documentID,
		Filename:    SanitizeFilename(filename),
		ContentType: ContentTypePDF,
		Data:        data,
		FileSize:    int64(len(data)),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		Description: description,
	}, nil
}

// SanitizeFilename drops every character outside [a-zA-Z0-9._-] and truncates
// the result to 255 bytes. A name with nothing left becomes "attachment".
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	s := b.String()
	if len(s) > maxFilenameLen {
		s = s[:maxFilenameLen]
	}
	if s == "" || s == "." || s == ".." {
		return "attachment"
	}
	return s
}

// CheckSize reports whether size is above the soft warning threshold and logs
// a warning when it is.
func CheckSize(log logrus.FieldLogger, filename string, size int64) bool {
	if size <= model.AttachmentWarnSize {
		return false
	}
	log.WithFields(logrus.Fields{
		"file": filename,
		"size": size,
	}).Warn("attachment is large")
	return true
}

// Export writes the attachment payload into dir under its sanitized name and
// returns the path written.
func Export(dir string, a model.Attachment) (string, error) {
	path := filepath.Join(dir, SanitizeFilename(a.Filename))
	if err := os.WriteFile(path, a.Data, 0o644); err != nil {
		return "", fmt.Errorf("exporting attachment %d: %w", a.ID, err)
	}
	return path, nil
}
