package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/attacktree/pkg/errors"
)

// AttackTreeFile is the file name of an assessment's attack tree report.
const AttackTreeFile = "attack_tree.json"

// FileSource reads assessments from a storage directory with one
// subdirectory per assessment id.
type FileSource struct {
	root string
}

// NewFileSource returns a source rooted at dir. The directory does not need
// to exist yet.
func NewFileSource(dir string) *FileSource {
	return &FileSource{root: dir}
}

// Name returns "file".
func (s *FileSource) Name() string { return "file" }

// Root returns the storage directory.
func (s *FileSource) Root() string { return s.root }

// Fetch reads <root>/<id>/attack_tree.json.
func (s *FileSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := apperrors.ValidateAssessmentID(id); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(s.root, id, AttackTreeFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "assessment %s has no attack tree", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "read %s", path)
	}
	return data, nil
}

// List scans the storage directory. Entries that are not UUID-named
// directories holding an attack tree file are skipped. The timestamp comes
// from the report's "timestamp" field, falling back to the file time.
func (s *FileSource) List(ctx context.Context) ([]Assessment, error) {
	entries, err := os.ReadDir(s.root)
	if os.IsNotExist(err) {
		return []Assessment{}, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "list %s", s.root)
	}

	out := []Assessment{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		path := filepath.Join(s.root, e.Name(), AttackTreeFile)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		a := Assessment{ID: e.Name(), UpdatedAt: info.ModTime().UTC()}
		if ts := readTimestamp(path); !ts.IsZero() {
			a.UpdatedAt = ts
		}
		out = append(out, a)
	}

	sortNewestFirst(out)
	return out, nil
}

func readTimestamp(path string) (ts time.Time) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ts
	}
	var head struct {
		Timestamp string `json:"timestamp"`
	}
	if json.Unmarshal(data, &head) != nil {
		return ts
	}
	return parseTimestamp(head.Timestamp)
}

func sortNewestFirst(as []Assessment) {
	slices.SortStableFunc(as, func(a, b Assessment) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

// Ensure FileSource implements Source.
var _ Source = (*FileSource)(nil)
