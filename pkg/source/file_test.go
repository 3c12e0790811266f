package source

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/attacktree/pkg/errors"
)

const (
	idOld = "0b5f2c3e-8a61-4d2b-9f3c-1e2d3c4b5a69"
	idNew = "7d1e6f42-3c55-4a0e-b8d2-6a9f0e1c2b3d"
)

const report = `{
  "timestamp": "%s",
  "result": {
    "attack_tree": {"nodes": [{"id": "root", "type": "goal", "label": "Compromise System"}]},
    "markdown": "# Attack Tree"
  }
}`

func writeReport(t *testing.T, root, id, timestamp string) {
	t.Helper()
	dir := filepath.Join(root, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	data := []byte(fmt.Sprintf(report, timestamp))
	if err := os.WriteFile(filepath.Join(dir, AttackTreeFile), data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestFileSourceFetch(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeReport(t, root, idOld, "2024-03-01T10:00:00.123456")
	s := NewFileSource(root)

	data, err := s.Fetch(ctx, idOld)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Fetch returned no data")
	}

	tests := []struct {
		name string
		id   string
		code apperrors.Code
	}{
		{"Missing", idNew, apperrors.ErrCodeNotFound},
		{"InvalidID", "../../etc", apperrors.ErrCodeInvalidAssessment},
		{"Empty", "", apperrors.ErrCodeInvalidAssessment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Fetch(ctx, tt.id)
			if !apperrors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}

	if _, err := s.Fetch(ctx, idNew); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing assessment should wrap ErrNotFound: %v", err)
	}
}

func TestFileSourceFetchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFileSource(t.TempDir()).Fetch(ctx, idOld); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestFileSourceList(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeReport(t, root, idOld, "2024-03-01T10:00:00.123456")
	writeReport(t, root, idNew, "2024-05-02T08:30:00Z")

	// Noise that must be skipped
	if err := os.MkdirAll(filepath.Join(root, "not-a-uuid"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, "11111111-2222-4333-8444-555555555555"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "stray.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileSource(root).List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("List = %+v, want 2 assessments", got)
	}
	if got[0].ID != idNew || got[1].ID != idOld {
		t.Errorf("order = %s, %s; want newest first", got[0].ID, got[1].ID)
	}
	want := time.Date(2024, 3, 1, 10, 0, 0, 123456000, time.UTC)
	if !got[1].UpdatedAt.Equal(want) {
		t.Errorf("UpdatedAt = %v, want %v", got[1].UpdatedAt, want)
	}
}

func TestFileSourceListMissingRoot(t *testing.T) {
	got, err := NewFileSource(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("List = %v, want empty", got)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-01T10:00:00Z", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T12:00:00+02:00", time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{"2024-03-01T10:00:00.5", time.Date(2024, 3, 1, 10, 0, 0, 500000000, time.UTC)},
		{"yesterday", time.Time{}},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseTimestamp(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
