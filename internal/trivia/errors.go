package trivia

import (
	"errors"
	"fmt"
)

// ErrMissingData is wrapped when a response decodes but lacks required fields.
var ErrMissingData = errors.New("missing data")

// FetchError reports a failed retrieval from the trivia source.
// CategoryID is zero when the pool listing itself failed.
type FetchError struct {
	Op         string
	CategoryID int
	Err        error
}

func (e *FetchError) Error() string {
	if e.CategoryID == 0 {
		return fmt.Sprintf("trivia %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("trivia %s %d: %v", e.Op, e.CategoryID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err carries a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
