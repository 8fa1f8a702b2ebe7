package charset

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Encoding represents a text encoding
type Encoding string

const (
	EncodingUTF8  Encoding = "utf-8"
	EncodingEUCKR Encoding = "euc-kr" // also covers CP949 exports from Excel
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DetectEncoding detects the encoding of a byte buffer.
// Catalog exports are written as utf-8-sig; older spreadsheets saved on
// Korean Windows come out as EUC-KR.
func DetectEncoding(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return EncodingUTF8
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingEUCKR
}

// Decode converts a byte buffer from the specified encoding to a UTF-8
// string, dropping any byte order mark.
func Decode(data []byte, enc Encoding) (string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	switch enc {
	case EncodingUTF8, "":
		if utf8.Valid(data) {
			return string(data), nil
		}
		// Mislabelled file, fall back to EUC-KR
		return decodeEUCKR(data)
	case EncodingEUCKR:
		// A valid UTF-8 file labelled EUC-KR is left alone
		if utf8.Valid(data) {
			return string(data), nil
		}
		return decodeEUCKR(data)
	}
	return "", fmt.Errorf("unsupported encoding: %s", enc)
}

func decodeEUCKR(data []byte) (string, error) {
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("decode euc-kr: %w", err)
	}
	return string(out), nil
}

// ToUTF8Reader wraps a reader with a decoder to convert to UTF-8
func ToUTF8Reader(r io.Reader, enc Encoding) io.Reader {
	if enc == EncodingEUCKR {
		return transform.NewReader(r, korean.EUCKR.NewDecoder())
	}
	return r
}
