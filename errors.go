package holepunch

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedPlatform is returned by every operation on platforms
	// with no sparse-file backend.
	ErrUnsupportedPlatform = errors.New("sparse file operations are not supported on this platform")

	// ErrUnsupportedFileSystem is returned when the operating system
	// supports hole/data reporting but the filesystem backing the file
	// does not.
	ErrUnsupportedFileSystem = errors.New("filesystem does not support sparse file reporting")
)

// RawError carries a platform failure code that could not be mapped to a
// standard error. Callers can inspect or log Code directly.
type RawError struct {
	Code int
}

func (e *RawError) Error() string {
	return fmt.Sprintf("unrecognized platform error code %d", e.Code)
}
