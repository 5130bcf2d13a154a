package errors

// StorageError is a specialized error type for storage-backend operations:
// reading or writing a segment file, creating or removing a segment
// directory. It embeds baseError to inherit chaining and structured details,
// then adds the fields that pinpoint exactly where an I/O failure occurred.
type StorageError struct {
	*baseError
	segmentNumber uint32 // Which segment directory was being accessed, if applicable.
	path          string // Path of the file or directory involved.
	fileName      string // Name of the file involved, e.g. "metadata.bin".
}

// NewStorageError creates a new storage-specific error.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the StorageError type.
func (se *StorageError) WithMessage(msg string) *StorageError {
	se.baseError.WithMessage(msg)
	return se
}

// WithDetail adds contextual information while maintaining the StorageError type.
func (se *StorageError) WithDetail(key string, value any) *StorageError {
	se.baseError.WithDetail(key, value)
	return se
}

// WithSegmentNumber records which segment directory was involved in the error.
func (se *StorageError) WithSegmentNumber(n uint32) *StorageError {
	se.segmentNumber = n
	return se
}

// WithPath records the path that was being accessed.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// WithFileName records the file name within the segment directory.
func (se *StorageError) WithFileName(name string) *StorageError {
	se.fileName = name
	return se
}

// SegmentNumber returns the segment number associated with the error, if any.
func (se *StorageError) SegmentNumber() uint32 {
	return se.segmentNumber
}

// Path returns the path that was being accessed when the error occurred.
func (se *StorageError) Path() string {
	return se.path
}

// FileName returns the file name that was being accessed when the error occurred.
func (se *StorageError) FileName() string {
	return se.fileName
}

// NewNotAnIndexDirectoryError builds the error returned by refresh when a
// directory has no summaries and no current segment to recover.
func NewNotAnIndexDirectoryError(path string) *StorageError {
	return NewStorageError(nil, ErrorCodeNotAnIndexDirectory, "path is not an index directory").
		WithPath(path)
}

// NewMetadataNotFoundError builds the error returned by refresh when
// metadata.bin is missing from the index directory.
func NewMetadataNotFoundError(path string) *StorageError {
	return NewStorageError(nil, ErrorCodeMetadataNotFound, "cannot find index metadata in directory").
		WithPath(path).
		WithFileName("metadata.bin")
}
