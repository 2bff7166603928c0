// Package encoding turns spreadsheet exports of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decoded is the UTF-8 view of an input plus the charset it was read as.
type Decoded struct {
	io.Reader
	Charset string
}

func decoded(r io.Reader, charset string, dec *encoding.Decoder) *Decoded {
	if dec == nil {
		return &Decoded{Reader: r, Charset: charset}
	}

	return &Decoded{Reader: transform.NewReader(r, dec), Charset: charset}
}

// Decode sniffs the first 4 KiB of r. A BOM wins, then valid UTF-8, then the
// chardet guess, which still recognizes UTF-8 cut mid-rune at the peek
// boundary. Anything else is read as Windows-1252, the charset Excel on
// Spanish-locale Windows writes for CSV.
func Decode(r io.Reader) (*Decoded, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return decoded(br, CharsetUTF8, nil), nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decoded(br, CharsetUTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decoded(br, CharsetUTF16BE, unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()), nil
	case utf8.Valid(buf):
		return decoded(br, CharsetUTF8, nil), nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if result.Charset == "UTF-8" {
			return decoded(br, CharsetUTF8, nil), nil
		}
	}

	return decoded(br, CharsetWindows1252, charmap.Windows1252.NewDecoder()), nil
}
