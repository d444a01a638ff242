package domain

import "errors"

// Sentinel errors for the extraction core. Callers wrap these with
// fmt.Errorf("...: %w", ...) to attach the offending topic, type, or columns,
// and match with errors.Is.
var (
	// ErrUnsupportedMessageType marks a configured topic whose message type
	// has no registered field extractor. It fails the whole bag: a partially
	// extracted schema produces a silently incomplete dataset.
	ErrUnsupportedMessageType = errors.New("unsupported message type")

	// ErrSchemaMismatch marks a tabular row whose field set differs from the
	// column set established by the topic's first extracted message.
	ErrSchemaMismatch = errors.New("row fields do not match sink columns")
)
