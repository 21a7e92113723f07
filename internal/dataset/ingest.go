package dataset

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// Parse reads comma-separated text with a required header row. A UTF-8 BOM is
// dropped and a UTF-16 BOM selects UTF-16 decoding; any other input must be
// valid UTF-8. Header names are kept byte for byte.
func Parse(raw []byte) (*Dataset, error) {
	text, err := decodeText(raw)
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	r := csv.NewReader(bytes.NewReader(text))
	header, err := r.Read()
	if err == io.EOF {
		return nil, &ParseError{Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, csvError(err)
	}

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		rows = append(rows, record)
	}

	return New(header, rows)
}

// decodeText normalizes the input to BOM-less UTF-8
func decodeText(raw []byte) ([]byte, error) {
	utf16 := bytes.HasPrefix(raw, bomUTF16BE) || bytes.HasPrefix(raw, bomUTF16LE)
	if !utf16 && !utf8.Valid(raw) {
		return nil, errors.New("input is not valid UTF-8 text")
	}

	text, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), raw)
	if err != nil {
		return nil, fmt.Errorf("decoding text: %w", err)
	}

	if bytes.IndexByte(text, 0) >= 0 {
		return nil, errors.New("input contains binary data")
	}
	return text, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return &ParseError{Err: err}
}

// DecodeDataURI returns the payload of a data URI such as the one a browser
// FileReader produces: "data:text/csv;base64,<payload>". Non-base64 URIs are
// percent-decoded.
func DecodeDataURI(uri string) ([]byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, &ParseError{Err: errors.New("not a data URI")}
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, &ParseError{Err: errors.New("data URI has no payload separator")}
	}

	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		text, err := url.PathUnescape(payload)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("decoding data URI: %w", err)}
		}
		return []byte(text), nil
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some clients drop the padding
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if rawErr != nil {
			return nil, &ParseError{Err: fmt.Errorf("decoding base64 payload: %w", err)}
		}
	}
	return data, nil
}
