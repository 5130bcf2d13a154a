// Package storage provides the file-based backend every segment and the
// index manager serialize through. Each segment is a directory of whole
// files (metadata.bin, log_store.bin, inverted_map.bin, terms.bin,
// metric_store.bin) written and read atomically in full, using msgpack as
// the self-describing binary format.
package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/filesys"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// MetadataFile and AllSegmentsFile are the two fixed file names that live
// directly under an index directory.
const (
	MetadataFile    = "metadata.bin"
	AllSegmentsFile = "all_segments.bin"
)

// Per-segment-directory file names.
const (
	SegmentMetadataFile = "metadata.bin"
	LogStoreFile        = "log_store.bin"
	InvertedMapFile     = "inverted_map.bin"
	TermsFile           = "terms.bin"
	MetricStoreFile     = "metric_store.bin"
)

// Backend is the object/file abstraction the index manager and segments
// serialize through.
type Backend interface {
	CheckPathExists(path string) (bool, error)
	CreateDir(path string) error
	RemoveDir(path string) error
	ReadBytes(path string) ([]byte, error)
	WriteBytes(path string, data []byte, fsync bool) (int, error)
}

// FileBackend implements Backend directly against the local filesystem.
type FileBackend struct {
	log *zap.SugaredLogger
}

// NewFileBackend returns a Backend rooted at the local filesystem, logging
// every failed directory creation, directory removal and file write.
func NewFileBackend(log *zap.SugaredLogger) *FileBackend {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FileBackend{log: log}
}

// CheckPathExists reports whether path exists, regardless of whether it is
// a file or a directory.
func (f *FileBackend) CheckPathExists(path string) (bool, error) {
	exists, err := filesys.Exists(path)
	if err != nil {
		return false, errors.ClassifyIOError(err, path, "")
	}
	return exists, nil
}

// CreateDir creates path and any missing parents, succeeding if the
// directory already exists.
func (f *FileBackend) CreateDir(path string) error {
	if err := filesys.CreateDir(path, 0755, true); err != nil {
		f.log.Errorw("failed to create directory", "path", path, "error", err)
		return errors.ClassifyIOError(err, path, "")
	}
	return nil
}

// RemoveDir removes path and everything under it.
func (f *FileBackend) RemoveDir(path string) error {
	if err := filesys.DeleteDir(path); err != nil {
		f.log.Errorw("failed to remove directory", "path", path, "error", err)
		return errors.ClassifyIOError(err, path, "")
	}
	return nil
}

// ReadBytes reads the entire contents of the file at path.
func (f *FileBackend) ReadBytes(path string) ([]byte, error) {
	data, err := filesys.ReadFile(path)
	if err != nil {
		return nil, errors.ClassifyIOError(err, filepath.Dir(path), filepath.Base(path))
	}
	return data, nil
}

// WriteBytes writes data to path as a single whole-file write, optionally
// forcing it to stable storage before returning.
func (f *FileBackend) WriteBytes(path string, data []byte, fsync bool) (int, error) {
	if err := filesys.WriteFile(path, 0644, data); err != nil {
		f.log.Errorw("failed to write file", "path", path, "error", err)
		return 0, errors.ClassifyIOError(err, filepath.Dir(path), filepath.Base(path))
	}

	if fsync {
		file, err := os.OpenFile(path, os.O_RDWR, 0644)
		if err != nil {
			return 0, errors.ClassifyIOError(err, filepath.Dir(path), filepath.Base(path))
		}
		defer file.Close()
		if err := file.Sync(); err != nil {
			return 0, errors.ClassifyIOError(err, filepath.Dir(path), filepath.Base(path))
		}
	}

	return len(data), nil
}

// Write msgpack-encodes value and writes it in full to path via backend,
// implementing the spec's write<T>(value, path, fsync) -> size contract.
// Map keys are encoded in sorted order, so equal values encode to equal bytes.
func Write[T any](backend Backend, value T, path string, fsync bool) (int, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(value); err != nil {
		return 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to encode value").WithPath(path)
	}
	return backend.WriteBytes(path, buf.Bytes(), fsync)
}

// Read reads path in full via backend and msgpack-decodes it into T,
// implementing the spec's read<T>(path) -> (T, size) contract.
func Read[T any](backend Backend, path string) (T, int, error) {
	var value T

	data, err := backend.ReadBytes(path)
	if err != nil {
		return value, 0, err
	}

	if err := msgpack.Unmarshal(data, &value); err != nil {
		return value, 0, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to decode value").WithPath(path)
	}
	return value, len(data), nil
}

// SegmentDir returns the path of segment n's directory under dir.
func SegmentDir(dir string, segmentNumber uint32) string {
	return filepath.Join(dir, strconv.FormatUint(uint64(segmentNumber), 10))
}
