package ledger

import (
	"io"
	"time"

	"github.com/IshaanNene/storyspider/internal/types"
)

// Writer appends records to an already opened and locked ledger stream.
type Writer struct {
	w    io.Writer
	path string
	now  func() time.Time
}

// NewWriter wraps w. path is only used in error messages.
func NewWriter(w io.Writer, path string) *Writer {
	return &Writer{w: w, path: path, now: time.Now}
}

// Write appends one line for rec. The line is emitted in a single Write call.
func (w *Writer) Write(rec *types.Record) error {
	line := NewLine(rec, w.now()).String() + "\n"
	if _, err := io.WriteString(w.w, line); err != nil {
		return &types.StorageError{Path: w.path, Op: "append", Err: err}
	}
	return nil
}
