package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary: reading or writing segment files, creating or removing
	// segment directories, or flushing to stable storage.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories: bugs, assertion failures, or invariant violations.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Query-related error codes cover the life of a search_logs call, from
// argument validation through JSON parsing to AST evaluation.
const (
	// ErrorCodeNoQueryProvided is returned when both the URL-string query and
	// the JSON query are empty.
	ErrorCodeNoQueryProvided ErrorCode = "NO_QUERY_PROVIDED"

	// ErrorCodeJSONParse is returned when the query-DSL JSON document fails to parse.
	ErrorCodeJSONParse ErrorCode = "JSON_PARSE_ERROR"

	// ErrorCodeTraverse covers failures while evaluating a parsed AST against a segment.
	ErrorCodeTraverse ErrorCode = "TRAVERSE_ERROR"

	// ErrorCodeDocMatching covers failures while mapping matched doc-ids back to log messages.
	ErrorCodeDocMatching ErrorCode = "DOC_MATCHING_ERROR"
)

// Block and postings-list error codes cover the fixed-capacity in-memory
// structures that back logs and metrics.
const (
	// ErrorCodeCapacityFull is returned when a fixed-capacity block (postings
	// or time-series) is appended to while already full.
	ErrorCodeCapacityFull ErrorCode = "CAPACITY_FULL"

	// ErrorCodeEmptyBlock is returned by Compress on an empty block.
	ErrorCodeEmptyBlock ErrorCode = "EMPTY_BLOCK"

	// ErrorCodePostingsList covers malformed postings list structure, such as a
	// landmark count that disagrees with the number of compressed blocks.
	ErrorCodePostingsList ErrorCode = "POSTINGS_LIST_ERROR"
)

// Segment and index-directory error codes.
const (
	// ErrorCodeSegmentCorrupted indicates a segment file's data has been
	// damaged or is in an inconsistent state.
	ErrorCodeSegmentCorrupted ErrorCode = "SEGMENT_CORRUPTED"

	// ErrorCodeNotAnIndexDirectory is returned when refresh finds a directory
	// with no summaries and no current segment to recover.
	ErrorCodeNotAnIndexDirectory ErrorCode = "NOT_AN_INDEX_DIRECTORY"

	// ErrorCodeMetadataNotFound is returned when refresh finds a directory lacking metadata.bin.
	ErrorCodeMetadataNotFound ErrorCode = "INDEX_METADATA_NOT_FOUND"

	// ErrorCodeSegmentInMemory is returned by delete_segment when the segment is still resident.
	ErrorCodeSegmentInMemory ErrorCode = "SEGMENT_IN_MEMORY"
)

// ErrorCodeInvalidConfiguration represents a rejected configuration value
// (e.g. a zero size threshold, or a memory budget smaller than one segment).
const ErrorCodeInvalidConfiguration ErrorCode = "INVALID_CONFIGURATION"
