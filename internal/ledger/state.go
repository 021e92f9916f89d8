package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/IshaanNene/storyspider/internal/types"
)

// LoadCrawled collects the identity key of every well-formed line in every
// regular file of dir. Malformed lines are skipped; a file that cannot be
// read stops contributing at the point of failure. Only a failure to list
// dir is returned.
func LoadCrawled(dir string, logger *slog.Logger) (map[string]struct{}, error) {
	logger = logger.With("component", "ledger_state")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &types.StorageError{Path: dir, Op: "list", Err: err}
	}

	crawled := make(map[string]struct{})
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		added, malformed, err := loadFile(path, crawled)
		if err != nil {
			logger.Warn("ledger file only partially read", "path", path, "error", err)
		}
		if malformed > 0 {
			logger.Debug("skipped malformed ledger lines", "path", path, "count", malformed)
		}
		logger.Debug("ledger file loaded", "path", path, "urls", added)
	}

	logger.Info("crawl state loaded", "dir", dir, "urls", len(crawled))
	return crawled, nil
}

func loadFile(path string, crawled map[string]struct{}) (added, malformed int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		raw, readErr := r.ReadString('\n')
		if strings.TrimSpace(raw) != "" {
			line, perr := ParseLine(raw)
			switch {
			case perr == nil:
				crawled[line.URL] = struct{}{}
				added++
			case errors.Is(perr, ErrMalformedLine):
				malformed++
			}
		}
		if readErr == io.EOF {
			return added, malformed, nil
		}
		if readErr != nil {
			return added, malformed, fmt.Errorf("read %s: %w", path, readErr)
		}
	}
}
