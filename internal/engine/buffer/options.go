package buffer

import "strings"

// Option configures a Buffer at construction.
type Option func(*Buffer)

// WithLineEnding sets the buffer's line ending style and disables detection.
func WithLineEnding(le LineEnding) Option {
	return func(b *Buffer) {
		b.lineEnding = le
		b.fixedEOL = true
	}
}

// WithLF forces "\n" line endings.
func WithLF() Option {
	return WithLineEnding(LineEndingLF)
}

// WithCRLF forces "\r\n" line endings.
func WithCRLF() Option {
	return WithLineEnding(LineEndingCRLF)
}

// WithCR forces "\r" line endings.
func WithCR() Option {
	return WithLineEnding(LineEndingCR)
}

// DetectLineEnding returns the most frequent line ending in text. Ties and
// text without line breaks resolve to LF.
func DetectLineEnding(text string) LineEnding {
	crlf := strings.Count(text, "\r\n")
	cr := strings.Count(text, "\r") - crlf
	lf := strings.Count(text, "\n") - crlf

	switch {
	case crlf > lf && crlf >= cr:
		return LineEndingCRLF
	case cr > lf && cr > crlf:
		return LineEndingCR
	}
	return LineEndingLF
}
