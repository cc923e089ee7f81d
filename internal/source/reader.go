package source

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/JonMunkholm/vetimport/internal/core"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Wrap prepares a raw extract for CSV parsing: the byte-order mark that
// spreadsheet exports prepend is dropped, invalid UTF-8 is replaced with '?'
// and reading fails with core.ErrFileTooLarge once more than maxBytes have
// been consumed. A maxBytes of zero disables the limit.
func Wrap(r io.Reader, maxBytes int64) *Reader {
	limit := &limitReader{r: r, max: maxBytes}
	return &Reader{limit: limit, out: &sanitizer{r: skipBOM(limit)}}
}

// Reader is the cleaned view of an extract returned by Wrap.
type Reader struct {
	limit *limitReader
	out   io.Reader
}

func (r *Reader) Read(p []byte) (int, error) {
	return r.out.Read(p)
}

// Exceeded reports whether the size limit was hit.
func (r *Reader) Exceeded() bool {
	return r.limit.exceeded
}

// skipBOM returns a reader positioned after a leading UTF-8 byte-order mark.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

type limitReader struct {
	r        io.Reader
	max      int64
	read     int64
	exceeded bool
}

func (l *limitReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.read += int64(n)
	if l.max > 0 && l.read > l.max {
		l.exceeded = true
		return n, fmt.Errorf("%w: more than %d bytes", core.ErrFileTooLarge, l.max)
	}
	return n, err
}

// sanitizer replaces invalid UTF-8 with '?'. A multi-byte rune split across
// two reads is held back until its remaining bytes arrive.
type sanitizer struct {
	r       io.Reader
	pending []byte
}

func (s *sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for {
		n := copy(p, s.pending)
		s.pending = s.pending[n:]

		var err error
		read := false
		if len(s.pending) == 0 && n < len(p) {
			var m int
			m, err = s.r.Read(p[n:])
			n += m
			read = true
		}
		data := p[:n]

		if read && err == nil {
			if tail := incompleteTail(data); tail > 0 {
				s.pending = append(s.pending, data[len(data)-tail:]...)
				data = data[:len(data)-tail]
			}
			if len(data) == 0 {
				continue
			}
		}
		return sanitizeInPlace(data), err
	}
}

// incompleteTail returns how many trailing bytes form the start of a rune
// whose remaining bytes have not been read yet.
func incompleteTail(data []byte) int {
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		start := len(data) - i
		if utf8.RuneStart(data[start]) {
			if utf8.FullRune(data[start:]) {
				return 0
			}
			return i
		}
	}
	return 0
}

// sanitizeInPlace rewrites data replacing every invalid byte with '?' and
// returns the new length, which never exceeds len(data).
func sanitizeInPlace(data []byte) int {
	w := 0
	for r := 0; r < len(data); {
		c, size := utf8.DecodeRune(data[r:])
		if c == utf8.RuneError && size <= 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		w += copy(data[w:], data[r:r+size])
		r += size
	}
	return w
}
