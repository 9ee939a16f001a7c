// Package fsutil holds the filesystem primitives of the build: resetting the
// output tree, mirroring the asset tree into it and writing generated files.
package fsutil

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Permission bits for everything the builder creates. Source permissions are not mirrored.
const (
	DirPerm  fs.FileMode = 0o755
	FilePerm fs.FileMode = 0o644
)

// ResetDir guarantees dir exists and is empty. An existing tree is removed
// first; missing parents are created.
func ResetDir(dir string) error {
	clean := filepath.Clean(dir)
	if clean == "." || clean == string(filepath.Separator) || clean == filepath.VolumeName(clean)+string(filepath.Separator) {
		return fmt.Errorf("refusing to reset %q", dir)
	}
	if err := os.RemoveAll(clean); err != nil {
		return fmt.Errorf("remove %s: %w", clean, err)
	}
	if err := os.MkdirAll(clean, DirPerm); err != nil {
		return fmt.Errorf("create %s: %w", clean, err)
	}
	return nil
}

// CopyStats counts what CopyTree mirrored.
type CopyStats struct {
	Files   int
	Dirs    int
	Skipped int
}

// CopyTree recursively mirrors the regular files and directories under src
// into dst, preserving relative paths. Symlinks and special files are skipped.
func CopyTree(src, dst string) (CopyStats, error) {
	var stats CopyStats
	err := copyTree(src, dst, &stats)
	return stats, err
}

func copyTree(src, dst string, stats *CopyStats) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if _, err := os.Stat(dst); os.IsNotExist(err) {
		if err := os.MkdirAll(dst, DirPerm); err != nil {
			return err
		}
		stats.Dirs++
	} else if err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		switch {
		case entry.IsDir():
			if err := copyTree(srcPath, dstPath, stats); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if err := CopyFile(srcPath, dstPath); err != nil {
				return err
			}
			stats.Files++
		default:
			stats.Skipped++
			slog.Debug("Skipping non-regular file", logfields.Path(srcPath), slog.String("type", entry.Type().String()))
		}
	}
	return nil
}

// CopyFile copies a single regular file byte-for-byte, creating dst's parent
// directory if needed. A failed copy leaves no dst behind.
func CopyFile(src, dst string) error {
	srcFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), DirPerm); err != nil {
		return err
	}

	// #nosec G304 -- dst is derived from the configured output tree
	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerm)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := dstFile.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return nil
}

// WriteFileAtomic writes data to a temporary sibling and renames it into
// place, so readers never observe a partially written file.
func WriteFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

// Exists reports whether path exists and, when wantDir is set, is a directory.
func Exists(path string, wantDir bool) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !wantDir || fi.IsDir()
}
