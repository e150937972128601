package music

import (
	"errors"
	"fmt"
)

// ErrSectionNotFound reports an arrange call naming an unknown section.
var ErrSectionNotFound = errors.New("music: section not found")

// ErrMarkerNotFound reports a lookup of an unknown marker name.
var ErrMarkerNotFound = errors.New("music: marker not found")

// ErrTemplateNotFound reports an instrument call naming an unknown template.
var ErrTemplateNotFound = errors.New("music: template not found")

// SampleDecodeError wraps a failure to open or decode a sample file.
type SampleDecodeError struct {
	Path   string
	Reason error
}

func (e *SampleDecodeError) Error() string {
	return fmt.Sprintf("music: decoding sample %q: %v", e.Path, e.Reason)
}

func (e *SampleDecodeError) Unwrap() error { return e.Reason }

// InvalidCompositionError reports a composition that fails pre-render
// validation.
type InvalidCompositionError struct {
	Reason string
}

func (e *InvalidCompositionError) Error() string {
	return "music: invalid composition: " + e.Reason
}
