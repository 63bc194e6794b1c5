package textutil

import "golang.org/x/text/unicode/norm"

// NormalizeNFC returns s in Unicode normalization form C. Decomposed file
// names and composed OCR output compare equal afterwards.
func NormalizeNFC(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}
