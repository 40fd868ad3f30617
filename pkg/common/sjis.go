package common

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/width"
)

// The full-width forms of '"' and '\'' only exist as vendor extensions in
// Shift-JIS. The browser font has the JIS X 0208 quotes (0x8168, 0x8166).
var (
	quoteWidener = strings.NewReplacer(`"`, "”", `'`, "’")
	quoteFolder  = strings.NewReplacer("”", `"`, "’", `'`)
)

// EncodeSJIS converts s to the full-width Shift-JIS form used by the PS2
// browser for save titles. Characters without a Shift-JIS mapping fail.
func EncodeSJIS(s string) ([]byte, error) {
	wide := width.Widen.String(quoteWidener.Replace(s))
	out, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(wide))
	if err != nil {
		return nil, fmt.Errorf("text %q is not representable in Shift-JIS: %w", s, err)
	}
	return out, nil
}

// DecodeSJIS converts Shift-JIS bytes back to text, folding full-width
// ASCII forms and the JIS quotes to their narrow equivalents.
func DecodeSJIS(b []byte) (string, error) {
	out, err := japanese.ShiftJIS.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("invalid Shift-JIS data: %w", err)
	}
	return quoteFolder.Replace(width.Fold.String(string(out))), nil
}
