package model

import (
	"bytes"
	"time"
)

// Attachment is a binary file (normally a PDF) owned by a document.
type Attachment struct {
	ID          int // 0 = not yet persisted
	DocumentID  int
	Filename    string
	ContentType string
	Data        []byte
	FileSize    int64
	PageCount   *int // nil when unknown
	CreatedAt   time.Time
	Description string
}

// IsNew reports whether the attachment has not been persisted yet.
func (a Attachment) IsNew() bool {
	return a.ID == 0
}

// Clone returns an independent copy; the payload and page count are not shared.
func (a Attachment) Clone() Attachment {
	if a.Data != nil {
		a.Data = bytes.Clone(a.Data)
	}
	if a.PageCount != nil {
		n := *a.PageCount
		a.PageCount = &n
	}
	return a
}

// Copy returns an independent copy with the identity cleared.
func (a Attachment) Copy() Attachment {
	c := a.Clone()
	c.ID = 0
	return c
}

func (a Attachment) Equal(o Attachment) bool {
	samePages := (a.PageCount == nil) == (o.PageCount == nil) &&
		(a.PageCount == nil || *a.PageCount == *o.PageCount)
	return a.ID == o.ID &&
		a.DocumentID == o.DocumentID &&
		a.Filename == o.Filename &&
		a.ContentType == o.ContentType &&
		bytes.Equal(a.Data, o.Data) &&
		a.FileSize == o.FileSize &&
		samePages &&
		a.CreatedAt.Equal(o.CreatedAt) &&
		a.Description == o.Description
}

const (
	// MaxAttachmentSize is the hard cap on an attachment payload.
	MaxAttachmentSize = 10 * 1024 * 1024
	// AttachmentWarnSize is the payload size above which callers should warn.
	AttachmentWarnSize = 5 * 1024 * 1024
)

// Validate checks the invariants enforced when the attachment is saved.
func (a Attachment) Validate() error {
	switch {
	case a.DocumentID <= 0:
		return invalid("attachment", "documentId", "must reference a document")
	case len(a.Data) == 0:
		return invalid("attachment", "data", "file is empty")
	case len(a.Data) > MaxAttachmentSize:
		return invalid("attachment", "data", "file is %d bytes, limit is %d", len(a.Data), MaxAttachmentSize)
	}
	return nil
}
