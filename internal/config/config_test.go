package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Server.Host != "localhost" {
		t.Errorf("host = %q, want localhost", cfg.Server.Host)
	}
	if cfg.Splitter.ChunkSize != 1500 || cfg.Splitter.ChunkOverlap != 300 {
		t.Errorf("splitter defaults = %d/%d", cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 5 {
		t.Errorf("top_k = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Embedding.Dimensions != 768 {
		t.Errorf("dimensions = %d, want 768", cfg.Embedding.Dimensions)
	}
	if cfg.Upload.MaxFileBytes != 10<<20 {
		t.Errorf("max_file_bytes = %d", cfg.Upload.MaxFileBytes)
	}
	if cfg.Session.CookieName != "session_id" {
		t.Errorf("cookie_name = %q", cfg.Session.CookieName)
	}
}

func TestLoad_ExpandsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "storage:\n  database_path: ./db/chat.db\n  index_dir: ./idx\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.DatabasePath != filepath.Join(dir, "db/chat.db") {
		t.Errorf("database_path = %q", cfg.Storage.DatabasePath)
	}
	if cfg.Storage.IndexDir != filepath.Join(dir, "idx") {
		t.Errorf("index_dir = %q", cfg.Storage.IndexDir)
	}
}

func TestLoad_RejectsOverlapNotSmallerThanSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "splitter:\n  chunk_size: 100\n  chunk_overlap: 100\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for overlap >= size")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
