package intake

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMEPDF  = "application/pdf"
	MIMEDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var ErrInvalidFormat = errors.New("invalid file format")

// File is a résumé candidate picked from disk or dropped into the client.
type File struct {
	Name     string
	MIMEType string
	Content  []byte
}

// DragEvent is a gesture delivered by the host. PreventDefault stops the host
// from handling a dropped file on its own.
type DragEvent interface {
	PreventDefault()
}

// Intake holds the currently selected résumé and the drag flag.
// It is not safe for concurrent use; the session controller owns it.
type Intake struct {
	selected   *File
	dragActive bool
}

func New() *Intake {
	return &Intake{}
}

// Accepted reports whether the declared MIME type is one of the upload formats.
// Only an exact match counts.
func Accepted(mimeType string) bool {
	return mimeType == MIMEPDF || mimeType == MIMEDOCX
}

// Select replaces the selected file. A file with a disallowed type is rejected
// with ErrInvalidFormat and the previous selection is kept.
func (i *Intake) Select(f File) error {
	if !Accepted(f.MIMEType) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, f.MIMEType)
	}

	i.selected = &f
	return nil
}

func (i *Intake) Selected() (File, bool) {
	if i.selected == nil {
		return File{}, false
	}

	return *i.selected, true
}

func (i *Intake) SetDragActive(active bool) {
	i.dragActive = active
}

func (i *Intake) DragActive() bool {
	return i.dragActive
}

func (i *Intake) DragEnter(ev DragEvent) {
	preventDefault(ev)
	i.dragActive = true
}

func (i *Intake) DragOver(ev DragEvent) {
	preventDefault(ev)
	i.dragActive = true
}

func (i *Intake) DragLeave(ev DragEvent) {
	preventDefault(ev)
	i.dragActive = false
}

// Drop clears the drag flag and selects the first dropped file.
// An empty drop is ignored.
func (i *Intake) Drop(ev DragEvent, files []File) error {
	preventDefault(ev)
	i.dragActive = false

	if len(files) == 0 {
		return nil
	}

	return i.Select(files[0])
}

// Open reads a local file into a candidate. The declared type comes from the
// file content; the extension is never consulted.
func Open(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading resume %q: %w", path, err)
	}

	return File{
		Name:     filepath.Base(path),
		MIMEType: mimetype.Detect(data).String(),
		Content:  data,
	}, nil
}

func preventDefault(ev DragEvent) {
	if ev != nil {
		ev.PreventDefault()
	}
}
