package resume

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseText(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := NewParser(dir)

	doc, err := p.Parse("../../jane.TXT", strings.NewReader("  Jane Doe\nGo, PostgreSQL  \n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Text != "Jane Doe\nGo, PostgreSQL" {
		t.Fatalf("unexpected text %q", doc.Text)
	}
	if doc.Filename != "jane.TXT" || doc.FileType != ".txt" {
		t.Fatalf("unexpected metadata %+v", doc)
	}
	if filepath.Dir(doc.Path) != dir {
		t.Fatalf("file stored outside uploads dir: %s", doc.Path)
	}
	if _, err := os.Stat(doc.Path); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}
}

func TestParseRejectsUnsupported(t *testing.T) {
	t.Parallel()

	_, err := NewParser(t.TempDir()).Parse("photo.png", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestParseRejectsOversized(t *testing.T) {
	t.Parallel()

	p := NewParser(t.TempDir())
	p.maxBytes = 4
	if _, err := p.Parse("cv.txt", strings.NewReader("too long")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestMatchSkills(t *testing.T) {
	t.Parallel()

	found, missing := MatchSkills("Built services in Go backed by postgresql.", []string{"Go", "PostgreSQL", "Kafka", " "})
	if diff := cmp.Diff([]string{"Go", "PostgreSQL"}, found); diff != "" {
		t.Errorf("found (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Kafka"}, missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
}
