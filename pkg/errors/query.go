package errors

// QueryError is a specialized error type for search_logs/get_metrics
// failures: an empty query, a malformed JSON query-DSL document, or a
// failure while evaluating a parsed AST against a segment's postings.
type QueryError struct {
	*baseError
	field string // Which query field or term was being evaluated, if applicable.
}

// NewQueryError creates a new query-specific error.
func NewQueryError(err error, code ErrorCode, msg string) *QueryError {
	return &QueryError{baseError: NewBaseError(err, code, msg)}
}

// WithMessage updates the error message while maintaining the QueryError type.
func (qe *QueryError) WithMessage(msg string) *QueryError {
	qe.baseError.WithMessage(msg)
	return qe
}

// WithDetail adds contextual information while maintaining the QueryError type.
func (qe *QueryError) WithDetail(key string, value any) *QueryError {
	qe.baseError.WithDetail(key, value)
	return qe
}

// WithField records the query field being evaluated when the error occurred.
func (qe *QueryError) WithField(field string) *QueryError {
	qe.field = field
	return qe
}

// Field returns the query field that was being evaluated when the error occurred.
func (qe *QueryError) Field() string {
	return qe.field
}

// ErrNoQueryProvided is returned verbatim when search_logs receives neither a
// URL-string query nor a JSON query.
func ErrNoQueryProvided() *QueryError {
	return NewQueryError(nil, ErrorCodeNoQueryProvided, "no query provided")
}

// NewJSONParseError wraps a JSON decoding failure from the query-DSL reader.
func NewJSONParseError(cause error) *QueryError {
	return NewQueryError(cause, ErrorCodeJSONParse, "failed to parse query-DSL JSON document")
}

// NewTraverseError wraps a failure while walking the AST against a segment's inverted map.
func NewTraverseError(cause error, field string) *QueryError {
	return NewQueryError(cause, ErrorCodeTraverse, "failed to traverse query AST").WithField(field)
}

// NewDocMatchingError wraps a failure while mapping a matched doc-id back to its log message.
func NewDocMatchingError(cause error, docID uint32) *QueryError {
	return NewQueryError(cause, ErrorCodeDocMatching, "failed to resolve matched doc-id to a log message").
		WithDetail("docId", docID)
}
