package util

import (
	"fmt"
	"io"
	"strings"
)

// IsTextData checks if a byte slice contains only printable ASCII text
func IsTextData(data []byte) bool {
	for _, b := range data {
		if b < 32 && b != 9 && b != 10 && b != 13 || b > 126 {
			return false
		}
	}
	return true
}

// FormatBytes renders a payload for log output: quoted text when it is
// printable, space separated hex otherwise.
func FormatBytes(data []byte) string {
	if len(data) == 0 {
		return "<empty>"
	}
	if IsTextData(data) {
		return fmt.Sprintf("%q", data)
	}
	return fmt.Sprintf("% X", data)
}

// HexDump writes data to w in hex dump format
func HexDump(w io.Writer, data []byte) {
	for i := 0; i < len(data); i += 16 {
		// Address
		fmt.Fprintf(w, "%04x  ", i)

		// Hex bytes
		for j := 0; j < 16; j++ {
			if i+j < len(data) {
				fmt.Fprintf(w, "%02x ", data[i+j])
			} else {
				fmt.Fprint(w, "   ")
			}
			if j == 7 {
				fmt.Fprint(w, " ")
			}
		}

		// ASCII
		fmt.Fprint(w, " |")
		for j := 0; j < 16 && i+j < len(data); j++ {
			b := data[i+j]
			if b >= 32 && b < 127 {
				fmt.Fprintf(w, "%c", b)
			} else {
				fmt.Fprint(w, ".")
			}
		}
		fmt.Fprintln(w, "|")
	}
}

// HexDumpString returns the hex dump of data as a string.
func HexDumpString(data []byte) string {
	var sb strings.Builder
	HexDump(&sb, data)
	return sb.String()
}
