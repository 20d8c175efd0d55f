package core

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// textCleaner drops a leading byte order mark and replaces ill-formed UTF-8
// with U+FFFD. A UTF-16 BOM switches decoding to UTF-16, which covers the
// "Unicode text" export some spreadsheet tools produce.
func textCleaner() transform.Transformer {
	return transform.Chain(
		unicode.BOMOverride(transform.Nop),
		runes.ReplaceIllFormed(),
	)
}

// CleanText returns raw as valid UTF-8 with any BOM removed.
func CleanText(raw []byte) ([]byte, error) {
	out, _, err := transform.Bytes(textCleaner(), raw)
	return out, err
}
