package layout

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	// ErrTextTooLong means a text value exceeds its field's declared maximum.
	ErrTextTooLong = errors.New("layout: text exceeds field capacity")

	// ErrInvalidText means a text value is not valid UTF-8.
	ErrInvalidText = errors.New("layout: text is not valid UTF-8")
)

// Fit checks s against f's capacity. Text is stored exactly as given.
//
// The maximum is counted in encoded bytes, the unit the medium charges for,
// so a value that passes Fit always encodes into the reserved space. For
// ASCII text this is exactly the character count.
func (f Field) Fit(s string) error {
	if !f.IsText() {
		return fmt.Errorf("layout: field %q is not a text field", f.Name)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s", ErrInvalidText, f.Name)
	}
	if len(s) > f.MaxLen {
		return fmt.Errorf("%w: %s has %d bytes, max %d", ErrTextTooLong, f.Name, len(s), f.MaxLen)
	}
	return nil
}
