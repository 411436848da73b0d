package cat62

import (
	"errors"
	"fmt"
)

var (
	// ErrWrongCategory indicates the datablock's category byte is not 62.
	ErrWrongCategory = errors.New("datablock category is not CAT62 (0x3E)")

	// ErrTruncatedDatablock indicates the declared datablock length exceeds
	// the bytes actually available in the buffer.
	ErrTruncatedDatablock = errors.New("datablock declared length exceeds available data")
)

// TruncatedFieldError reports a data item whose declared byte width would
// read past the enclosing datablock's declared length. It aborts the whole
// datablock decode.
type TruncatedFieldError struct {
	Item   string
	Offset int
}

func (e *TruncatedFieldError) Error() string {
	return fmt.Sprintf("truncated item %s at offset %d", e.Item, e.Offset)
}
