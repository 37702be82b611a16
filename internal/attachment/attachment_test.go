package attachment

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priku/tilitin/internal/model"
)

// minimalPDF builds a PDF with the given number of empty pages and a correct
// cross-reference table.
func minimalPDF(pages int) []byte {
	objs := []string{"<< /Type /Catalog /Pages 2 0 R >>"}
	var kids []string
	for i := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", i+3))
	}
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for range pages {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	var b bytes.Buffer
	b.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return b.Bytes()
}

type fixedCounter struct {
	n  int
	ok bool
}

func (c fixedCounter) PageCount([]byte) (int, bool) { return c.n, c.ok }

func TestFromFileSizeLimits(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"empty", 0, true},
		{"one kilobyte", 1024, false},
		{"at cap", model.MaxAttachmentSize, false},
		{"eleven megabytes", 11 * 1024 * 1024, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := FromFile(7, "x.pdf", make([]byte, tt.size), "")
			if tt.wantErr {
				var verr model.ValidationError
				assert.ErrorAs(t, err, &verr)
				return
			}
			require.NoError(t, err)
			assert.True(t, a.IsNew())
			assert.Equal(t, 7, a.DocumentID)
			assert.Equal(t, ContentTypePDF, a.ContentType)
			assert.EqualValues(t, tt.size, a.FileSize)
			assert.Nil(t, a.PageCount)
			assert.False(t, a.CreatedAt.IsZero())
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"receipt.pdf", "receipt.pdf"},
		{"kuitti 2024/03 (copy).pdf", "kuitti202403copy.pdf"},
		{"../../etc/passwd", "....etcpasswd"},
		{"ääkköset-1_2.PDF", "kkset-1_2.PDF"},
		{"///", "attachment"},
		{"..", "attachment"},
		{strings.Repeat("a", 300) + ".pdf", strings.Repeat("a", 255)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestCheckSizeWarns(t *testing.T) {
	log, hook := test.NewNullLogger()
	assert.False(t, CheckSize(log, "small.pdf", model.AttachmentWarnSize))
	assert.Empty(t, hook.AllEntries())

	assert.True(t, CheckSize(log, "big.pdf", model.AttachmentWarnSize+1))
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "big.pdf", hook.LastEntry().Data["file"])
}

func TestPDFCounter(t *testing.T) {
	n, ok := PDFCounter{}.PageCount(minimalPDF(3))
	require.True(t, ok)
	assert.Equal(t, 3, n)

	_, ok = PDFCounter{}.PageCount([]byte("definitely not a pdf"))
	assert.False(t, ok)

	_, ok = PDFCounter{}.PageCount(nil)
	assert.False(t, ok)
}

func TestIsValidPdf(t *testing.T) {
	log, _ := test.NewNullLogger()
	in := NewInspector(log)
	assert.True(t, in.IsValidPdf(minimalPDF(1)))
	assert.False(t, in.IsValidPdf(minimalPDF(0)), "no pages")
	assert.False(t, in.IsValidPdf([]byte("GIF89a garbage")))
	assert.False(t, in.IsValidPdf(nil))

	// a PDF header with a parser that finds nothing
	in.Counter = fixedCounter{ok: false}
	assert.False(t, in.IsValidPdf(minimalPDF(2)))
}

func TestMeasure(t *testing.T) {
	log, hook := test.NewNullLogger()
	in := &Inspector{Counter: fixedCounter{n: 4, ok: true}, Log: log}

	a := model.Attachment{Filename: "a.pdf", Data: []byte("%PDF-1.4 tiny")}
	in.Measure(&a)
	require.NotNil(t, a.PageCount)
	assert.Equal(t, 4, *a.PageCount)
	assert.EqualValues(t, len(a.Data), a.FileSize)

	in.Counter = fixedCounter{ok: false}
	in.Measure(&a)
	assert.Nil(t, a.PageCount, "unknown page count is allowed")

	big := model.Attachment{Filename: "big.pdf", Data: make([]byte, model.AttachmentWarnSize+10)}
	in.Measure(&big)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoad(t *testing.T) {
	log, _ := test.NewNullLogger()
	in := NewInspector(log)

	a, err := in.Load(3, "lasku 12.pdf", minimalPDF(2), "invoice")
	require.NoError(t, err)
	assert.Equal(t, "lasku12.pdf", a.Filename)
	require.NotNil(t, a.PageCount)
	assert.Equal(t, 2, *a.PageCount)
	assert.Equal(t, "invoice", a.Description)

	_, err = in.Load(3, "notes.txt", []byte("plain text"), "")
	var verr model.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	path, err := Export(dir, model.Attachment{ID: 1, Filename: "../escape.pdf", Data: []byte("data")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "..escape.pdf"), path)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}
