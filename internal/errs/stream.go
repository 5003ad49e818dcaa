package errs

// StreamError reports that a live subscription stopped delivering snapshots.
type StreamError struct {
	Stream string
	Err    error
}

func NewStreamError(stream string, err error) *StreamError {
	return &StreamError{Stream: stream, Err: err}
}

func (e *StreamError) Error() string {
	if e.Err == nil {
		return e.Stream + " stream stopped"
	}
	return e.Stream + " stream: " + e.Err.Error()
}

func (e *StreamError) Unwrap() error { return e.Err }
