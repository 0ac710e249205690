package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func tempTree(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempTree(t)
	content := []byte("<topic/>\n")
	if err := s.Write("topics/a.dita", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("topics/a.dita")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempTree(t)
	if err := s.Write("a/b/c.dita", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !s.Exists("a/b") {
		t.Error("parent directories should exist")
	}
}

func TestListFiltersByExtension(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("b.md", []byte("b"))
	_ = s.Write("sub/a.md", []byte("a"))
	_ = s.Write("readme.txt", []byte("not md"))

	items, err := s.List("", ".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2", len(items))
	}
	if items[0].Path != "b.md" || items[1].Path != filepath.Join("sub", "a.md") {
		t.Errorf("paths = %q, %q; want lexical order", items[0].Path, items[1].Path)
	}
	if items[0].Checksum == "" {
		t.Error("checksum should be populated")
	}
}

func TestListRelativeToDir(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("_includes/common/setup.md", []byte("x"))

	items, err := s.List("_includes", ".md")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Path != filepath.Join("common", "setup.md") {
		t.Errorf("items = %+v", items)
	}
}

func TestRemoveAll(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("images/x.svg", []byte("<svg/>"))
	if err := s.RemoveAll("images"); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if s.Exists("images") {
		t.Error("images should be gone")
	}
	if err := s.RemoveAll(""); err == nil {
		t.Error("removing the root should be refused")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempTree(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if s.Exists(p) {
			t.Errorf("Exists(%q) should be false", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempTree(t)
	_ = s.Write("atomic.dita", []byte("original"))
	if err := s.Write("atomic.dita", []byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.dita")
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.Root(), ".mddita-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "mddita-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
