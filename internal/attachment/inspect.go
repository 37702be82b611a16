package attachment

import (
	"bytes"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"

	"github.com/priku/tilitin/internal/model"
)

// PageCounter counts the pages of a PDF. ok is false when the data cannot be
// parsed.
type PageCounter interface {
	PageCount(data []byte) (n int, ok bool)
}

// PDFCounter parses the document cross-reference and page tree.
type PDFCounter struct{}

func (PDFCounter) PageCount(data []byte) (n int, ok bool) {
	defer func() {
		// the parser panics on some malformed inputs
		if recover() != nil {
			n, ok = 0, false
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, false
	}
	return r.NumPage(), true
}

// Inspector answers questions about attachment payloads.
type Inspector struct {
	Counter PageCounter
	Log     logrus.FieldLogger
}

// NewInspector returns an Inspector using PDFCounter.
func NewInspector(log logrus.FieldLogger) *Inspector {
	return &Inspector{Counter: PDFCounter{}, Log: log}
}

// IsValidPdf reports whether data looks like a PDF and has at least one page.
func (in *Inspector) IsValidPdf(data []byte) bool {
	if len(data) == 0 || !mimetype.Detect(data).Is(ContentTypePDF) {
		return false
	}
	n, ok := in.Counter.PageCount(data)
	return ok && n > 0
}

// PageCount returns the page count, or nil when it cannot be determined.
func (in *Inspector) PageCount(data []byte) *int {
	n, ok := in.Counter.PageCount(data)
	if !ok {
		return nil
	}
	return &n
}

// Measure fills in the attachment's size and page count and logs the soft
// size warning. A page count that cannot be determined stays nil and does
// not prevent saving.
func (in *Inspector) Measure(a *model.Attachment) {
	a.FileSize = int64(len(a.Data))
	a.PageCount = in.PageCount(a.Data)
	if a.PageCount == nil {
		in.log().WithField("file", a.Filename).Debug("page count unavailable")
	}
	CheckSize(in.log(), a.Filename, a.FileSize)
}

// Load reads, validates and measures a file for documentID. Data that is not
// a PDF is rejected.
func (in *Inspector) Load(documentID int, filename string, data []byte, description string) (model.Attachment, error) {
	a, err := FromFile(documentID, filename, data, description)
	if err != nil {
		return a, err
	}
	if !in.IsValidPdf(data) {
		return model.Attachment{}, model.ValidationError{Entity: "attachment", Field: "data",
			Reason: fmt.Sprintf("%s is not a readable PDF", a.Filename)}
	}
	in.Measure(&a)
	return a, nil
}

func (in *Inspector) log() logrus.FieldLogger {
	if in.Log == nil {
		return logrus.StandardLogger()
	}
	return in.Log
}
