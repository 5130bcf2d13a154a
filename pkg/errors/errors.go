// This package addresses the fundamental challenge that generic error handling presents in complex
// systems: when an error occurs, developers and operators need much more than just "something went wrong."
// They need to understand exactly what failed, why it failed, where it failed, and most importantly,
// what they can do about it. This package transforms error handling from reactive debugging into
// proactive problem resolution.
//
// Architecture and Design Philosophy:
//
// The error system is built around a hierarchical structure that starts with a foundational baseError
// and extends into domain-specific error types. This design provides several key advantages:
// it maintains consistency across all error types while allowing specialized context for different
// domains, enables rich error chaining that preserves the complete failure context, supports
// programmatic error handling through standardized error codes, and facilitates comprehensive
// logging and monitoring through structured error details.
//
// The system recognizes that different parts of an index engine fail in fundamentally different
// ways and require different types of contextual information for effective diagnosis and recovery.
// A validation error needs to know which field failed and what rule was violated. A storage error
// needs to know which segment directory and file were involved. A query error needs to know which
// field or term was being evaluated. By capturing this domain-specific context at the point of
// failure, the system enables much more intelligent error handling throughout the application stack.
//
// Error Classification and Codes:
//
// Central to this system is a comprehensive error code taxonomy that provides standardized
// categorization of failures. These codes serve multiple purposes: they enable programmatic
// error handling that doesn't rely on parsing error messages, they provide consistent
// categorization for monitoring and alerting systems, they facilitate error recovery logic
// by identifying specific failure modes, and they support internationalization by separating
// error identification from error presentation.
//
// The error codes are organized into several categories. Base codes cover fundamental failure
// types that can occur in any system: IO_ERROR for input/output failures, INVALID_INPUT for
// client-side validation problems, and INTERNAL_ERROR for unexpected system failures. Query
// codes cover the life of a search_logs/get_metrics call. Block codes cover the fixed-capacity
// structures that back postings lists and time-series. Segment codes cover the index directory's
// commit/refresh/delete_segment lifecycle.
//
// Usage Patterns and Best Practices:
//
// This error handling system is designed to support several key usage patterns that improve
// both developer experience and operational visibility.
//
// For error creation, the package encourages building errors with comprehensive context at
// the point of failure. This means capturing not just what went wrong, but where it went
// wrong, what was being attempted, and what conditions led to the failure. The fluent
// interface pattern makes this context capture both readable and maintainable.
//
// For error handling, the package supports both programmatic error handling (using error
// codes and type detection) and human-readable error reporting (using structured messages
// and details). This dual approach enables both robust automated error recovery and
// effective human troubleshooting.
//
// For error propagation, the package encourages preserving error context as errors flow
// through system layers while adding layer-specific context when appropriate. This creates
// a comprehensive audit trail of what happened during a failure, making root cause analysis
// much more effective.
package errors

import (
	stdErrors "errors"
)

// IsValidationError checks if the given error is a ValidationError or contains one in its error chain.
//
// Example usage:
//
//	if errors.IsValidationError(err) {
//	    // Handle validation-specific error recovery, e.g. reject a configuration at startup.
//	}
func IsValidationError(err error) bool {
	var ve *ValidationError
	return stdErrors.As(err, &ve)
}

// IsStorageError determines if an error is related to storage-backend operations: reading or
// writing a segment file, or creating/removing a segment directory. Storage errors often need
// different handling than other error types because they may indicate a corrupted on-disk
// layout that refresh should tolerate rather than abort on.
//
// Example usage:
//
//	if errors.IsStorageError(err) {
//	    storageErr, _ := errors.AsStorageError(err)
//	    log.Warnw("skipping unreadable segment", "segment", storageErr.SegmentNumber())
//	}
func IsStorageError(err error) bool {
	var se *StorageError
	return stdErrors.As(err, &se)
}

// IsQueryError identifies errors raised while parsing or evaluating a search_logs/get_metrics
// query: an empty query, malformed query-DSL JSON, or a failure while traversing the AST
// against a segment's postings.
func IsQueryError(err error) bool {
	var qe *QueryError
	return stdErrors.As(err, &qe)
}

// IsBlockError identifies errors raised by the fixed-capacity structures that back logs and
// metrics: a postings block or time-series block that is full, empty, or structurally invalid.
func IsBlockError(err error) bool {
	var be *BlockError
	return stdErrors.As(err, &be)
}

// IsSegmentError identifies errors raised by the index manager's segment-directory lifecycle:
// commit, refresh, or delete_segment.
func IsSegmentError(err error) bool {
	var se *SegmentError
	return stdErrors.As(err, &se)
}

// AsValidationError safely extracts a ValidationError from an error chain, providing access
// to validation-specific context such as which field failed, what rule was violated, and
// what values were provided versus expected.
//
// Example usage:
//
//	if validationErr, ok := errors.AsValidationError(err); ok {
//	    log.Errorw("rejecting configuration", "field", validationErr.Field(), "rule", validationErr.Rule())
//	}
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stdErrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsStorageError extracts StorageError context from an error chain, providing access to
// storage-specific information such as the segment number, path, and file name involved.
//
// Example usage:
//
//	if storageErr, ok := errors.AsStorageError(err); ok {
//	    log.Errorw("storage failure", "path", storageErr.Path(), "file", storageErr.FileName())
//	}
func AsStorageError(err error) (*StorageError, bool) {
	var se *StorageError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// AsQueryError extracts QueryError context from an error chain, providing access to the query
// field that was being evaluated when the error occurred.
func AsQueryError(err error) (*QueryError, bool) {
	var qe *QueryError
	if stdErrors.As(err, &qe) {
		return qe, true
	}
	return nil, false
}

// AsBlockError extracts BlockError context from an error chain, providing access to the
// block's fixed capacity when relevant.
func AsBlockError(err error) (*BlockError, bool) {
	var be *BlockError
	if stdErrors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// AsSegmentError extracts SegmentError context from an error chain, providing access to the
// segment number involved.
func AsSegmentError(err error) (*SegmentError, bool) {
	var se *SegmentError
	if stdErrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from any error that supports it, or returns
// ErrorCodeInternal for errors that don't have specific codes. This function provides
// a consistent way to categorize errors for monitoring and handling purposes.
//
// Example usage:
//
//	errorCode := errors.GetErrorCode(err)
//	metrics.IncrementErrorCounter(string(errorCode))
func GetErrorCode(err error) ErrorCode {
	if ve, ok := AsValidationError(err); ok {
		return ve.Code()
	}
	if se, ok := AsStorageError(err); ok {
		return se.Code()
	}
	if qe, ok := AsQueryError(err); ok {
		return qe.Code()
	}
	if be, ok := AsBlockError(err); ok {
		return be.Code()
	}
	if se, ok := AsSegmentError(err); ok {
		return se.Code()
	}
	return ErrorCodeInternal
}

// GetErrorDetails extracts structured details from any error that supports them,
// returning an empty map for errors without details. This function provides consistent
// access to additional error context regardless of the specific error type.
//
// Example usage:
//
//	details := errors.GetErrorDetails(err)
//	if len(details) > 0 {
//	    log.Errorw("operation failed", "error", err, "details", details)
//	}
func GetErrorDetails(err error) map[string]any {
	if ve, ok := AsValidationError(err); ok {
		if details := ve.Details(); details != nil {
			return details
		}
	}
	if se, ok := AsStorageError(err); ok {
		if details := se.Details(); details != nil {
			return details
		}
	}
	if qe, ok := AsQueryError(err); ok {
		if details := qe.Details(); details != nil {
			return details
		}
	}
	if be, ok := AsBlockError(err); ok {
		if details := be.Details(); details != nil {
			return details
		}
	}
	if se, ok := AsSegmentError(err); ok {
		if details := se.Details(); details != nil {
			return details
		}
	}
	return make(map[string]any)
}

// ClassifyIOError wraps a raw filesystem error with a StorageError carrying the path and
// file name that were involved, so callers further up the stack don't need to re-derive
// context from a bare *os.PathError.
func ClassifyIOError(err error, path, fileName string) error {
	storageErr := NewStorageError(err, ErrorCodeIO, "storage I/O operation failed").WithPath(path)
	if fileName != "" {
		storageErr = storageErr.WithFileName(fileName)
	}
	return storageErr
}
