package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func TestWriteAtomic(t *testing.T) {
	dir := t.TempDir()
	testPath := filepath.Join(dir, "config.yaml")

	data := []byte("display:\n  precision: 4\n")
	if err := writeAtomic(testPath, data); err != nil {
		t.Fatalf("writeAtomic failed: %v", err)
	}

	leftovers, _ := filepath.Glob(filepath.Join(dir, "*.tmp"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}

	readData, err := os.ReadFile(testPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(readData) != string(data) {
		t.Errorf("content mismatch: got %q, want %q", string(readData), string(data))
	}

	info, err := os.Stat(testPath)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != fileMode {
		t.Errorf("mode = %04o, want %04o", info.Mode().Perm(), fileMode)
	}
}

func TestSaveCreatesDir(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	if err := Save(NewConfig(), testPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(testPath); err != nil {
		t.Errorf("config file was not created: %v", err)
	}
}

func TestBackup(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.yaml")

	originalData := []byte("display:\n  precision: 1\n")
	if err := os.WriteFile(testPath, originalData, 0644); err != nil {
		t.Fatalf("failed to create original config: %v", err)
	}

	if err := backup(testPath); err != nil {
		t.Fatalf("backup failed: %v", err)
	}

	bakData, err := os.ReadFile(testPath + ".bak")
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if string(bakData) != string(originalData) {
		t.Errorf("backup content mismatch: got %q, want %q", string(bakData), string(originalData))
	}
}

func TestBackupFirstRun(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.yaml")

	if err := backup(testPath); err != nil {
		t.Fatalf("backup failed on first run: %v", err)
	}
	if _, err := os.Stat(testPath + ".bak"); !os.IsNotExist(err) {
		t.Error("backup should not exist on first run")
	}
}

func TestSaveReadOnlyDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores file permissions")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	defer os.Chmod(dir, 0755)

	err := Save(NewConfig(), filepath.Join(dir, "config.yaml"))
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("expected PermissionError, got %T: %v", err, err)
	}
	if perm.Op != "write" || !strings.Contains(err.Error(), "Fix:") {
		t.Errorf("unexpected permission error: %v", err)
	}
}

func TestSaveCreatesBackup(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.Storage.Path = "/first.db"
	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	cfg.Storage.Path = "/second.db"
	if err := Save(cfg, testPath); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	bakData, err := os.ReadFile(testPath + ".bak")
	if err != nil {
		t.Fatalf("failed to read backup: %v", err)
	}
	if !strings.Contains(string(bakData), "/first.db") || strings.Contains(string(bakData), "/second.db") {
		t.Error("backup should contain old config, not new config")
	}
}

func TestSaveValidatesBeforeWrite(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.Display.Precision = -1

	err := Save(cfg, testPath)
	if err == nil {
		t.Fatal("Save should fail validation for negative precision")
	}
	if !strings.Contains(err.Error(), "invalid config") {
		t.Errorf("error should mention invalid config, got: %v", err)
	}

	if _, err := os.Stat(testPath); !os.IsNotExist(err) {
		t.Error("config file should not exist after failed validation")
	}
}

func TestSaveConcurrentWrites(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping concurrent write test in short mode")
	}

	testPath := filepath.Join(t.TempDir(), "config.yaml")

	const numGoroutines = 10
	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cfg := NewConfig()
			cfg.Display.Precision = idx
			if err := Save(cfg, testPath); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent save failed: %v", err)
	}

	if _, err := LoadFrom(testPath); err != nil {
		t.Errorf("config file is corrupted after concurrent writes: %v", err)
	}
}
