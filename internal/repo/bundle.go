package repo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/miradorstack/mirador-crashkit/internal/models"
	"github.com/miradorstack/mirador-crashkit/internal/utils"
)

// Bundle subdirectories and well-known file names.
const (
	WERDir          = "wer"
	LiveKernelDir   = "livekernelreports"
	MinidumpDir     = "minidump"
	ReportFileName  = "Report.wer"
	ManifestFile    = "manifest.json"
	SysinfoFileName = "sysinfo.txt"
	MemoryFileName  = "memory.csv"
)

// Bundle gives read access to the artifact layout of one bundle directory.
type Bundle struct {
	Dir    string
	logger *slog.Logger
}

// OpenBundle resolves dir and checks that it is an existing directory.
func OpenBundle(dir string, logger *slog.Logger) (*Bundle, error) {
	if logger == nil {
		logger = slog.Default()
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		abs = filepath.Clean(dir)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, utils.NewAppError("open bundle", abs, utils.ErrBundleNotFound)
		}
		return nil, utils.NewAppError("open bundle", abs, err)
	}
	if !info.IsDir() {
		return nil, utils.NewAppError("open bundle", abs, utils.ErrBundleNotDir)
	}
	return &Bundle{Dir: abs, logger: logger}, nil
}

// ReportPaths returns every Report.wer under the wer directory in lexical walk order.
func (b *Bundle) ReportPaths() []string {
	var paths []string
	b.walkFiles(filepath.Join(b.Dir, WERDir), func(path string, _ fs.DirEntry) {
		if strings.EqualFold(filepath.Base(path), ReportFileName) {
			paths = append(paths, path)
		}
	})
	return paths
}

// LatestNamedFile finds the most recently modified file called name anywhere
// in the bundle. Names compare case-insensitively; ties keep the first found.
func (b *Bundle) LatestNamedFile(name string) (string, bool) {
	var (
		best     string
		bestTime int64
	)
	b.walkFiles(b.Dir, func(path string, d fs.DirEntry) {
		if !strings.EqualFold(d.Name(), name) {
			return
		}
		info, err := d.Info()
		if err != nil {
			return
		}
		if mod := info.ModTime().UnixNano(); best == "" || mod > bestTime {
			best, bestTime = path, mod
		}
	})
	return best, best != ""
}

// ArtifactStats counts crash artifacts and records the largest dump files.
func (b *Bundle) ArtifactStats() models.ArtifactStats {
	stats := models.ArtifactStats{WERReportCount: len(b.ReportPaths())}

	var lkSize int64 = -1
	b.walkFiles(filepath.Join(b.Dir, LiveKernelDir), func(path string, d fs.DirEntry) {
		stats.LiveKernelFiles++
		if info, err := d.Info(); err == nil && info.Size() > lkSize {
			lkSize = info.Size()
			stats.LargestLiveKernel = newFileInfo(path, lkSize)
		}
	})

	entries, err := os.ReadDir(filepath.Join(b.Dir, MinidumpDir))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		b.logger.Warn("minidump directory unreadable", slog.Any("error", err))
	}
	var mdSize int64 = -1
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".dmp") {
			continue
		}
		stats.MinidumpFiles++
		if info, err := entry.Info(); err == nil && info.Size() > mdSize {
			mdSize = info.Size()
			stats.LargestMinidump = newFileInfo(filepath.Join(b.Dir, MinidumpDir, entry.Name()), mdSize)
		}
	}
	return stats
}

// Manifest returns the bundle manifest as raw JSON, or nil when it is
// missing or not valid JSON.
func (b *Bundle) Manifest() json.RawMessage {
	path := filepath.Join(b.Dir, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			b.logger.Warn("manifest unreadable", slog.String("path", path), slog.Any("error", err))
		}
		return nil
	}
	data = bytes.TrimSpace(bytes.TrimPrefix(data, utf8BOM))
	if !json.Valid(data) {
		b.logger.Warn("manifest is not valid JSON", slog.String("path", path))
		return nil
	}
	return json.RawMessage(data)
}

func (b *Bundle) walkFiles(root string, visit func(path string, d fs.DirEntry)) {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == root {
				return fs.SkipDir
			}
			b.logger.Warn("skipping unreadable path", slog.String("path", path), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			visit(path, d)
		}
		return nil
	})
	if err != nil {
		b.logger.Warn("walk failed", slog.String("root", root), slog.Any("error", err))
	}
}

func newFileInfo(path string, size int64) *models.FileInfo {
	return &models.FileInfo{Path: path, Size: FormatBytes(size), Bytes: size}
}

// FormatBytes renders a byte count with one decimal in 1024 steps, e.g. "12.3MB".
func FormatBytes(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024 {
			return fmt.Sprintf("%.1f%s", size, unit)
		}
		size /= 1024
	}
	return fmt.Sprintf("%.1fPB", size)
}
