package ledger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/IshaanNene/storyspider/internal/types"
)

// File is an append-mode ledger file. Writers must hold its exclusive lock
// before appending.
type File struct {
	*os.File
	path   string
	locked bool
	logger *slog.Logger
}

// OpenFile opens path for appending, creating it when missing.
func OpenFile(path string, logger *slog.Logger) (*File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &types.StorageError{Path: path, Op: "open", Err: err}
	}
	return &File{
		File:   f,
		path:   path,
		logger: logger.With("component", "ledger_lock"),
	}, nil
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Lock takes the exclusive lock, polling every interval while another
// process holds it. It only gives up when ctx is done.
func (f *File) Lock(ctx context.Context, interval time.Duration) error {
	for {
		ok, err := tryLock(f.File)
		if err != nil {
			return &types.StorageError{Path: f.path, Op: "lock", Err: err}
		}
		if ok {
			f.locked = true
			f.logger.Debug("ledger locked", "path", f.path)
			return nil
		}

		f.logger.Info("waiting for ledger to be unlocked (it is in use by another instance)", "path", f.path)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Unlock releases the lock if held.
func (f *File) Unlock() error {
	if !f.locked {
		return nil
	}
	if err := unlock(f.File); err != nil {
		return &types.StorageError{Path: f.path, Op: "unlock", Err: err}
	}
	f.locked = false
	f.logger.Debug("ledger unlocked", "path", f.path)
	return nil
}

// Close releases the lock and closes the file.
func (f *File) Close() error {
	uerr := f.Unlock()
	cerr := f.File.Close()
	if uerr != nil {
		return uerr
	}
	if cerr != nil {
		return &types.StorageError{Path: f.path, Op: "close", Err: cerr}
	}
	return nil
}
