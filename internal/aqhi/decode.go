package aqhi

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// The observation feed and the region list are UTF-8 and may start with a BOM.
// The forecast feed declares ISO-8859-1, so the two are decoded separately.
var (
	utf8BOMEncoding encoding.Encoding = unicode.UTF8BOM
	latin1Encoding  encoding.Encoding = charmap.ISO8859_1
)

func decodeUTF8BOM(raw []byte) ([]byte, error) {
	return transcode(utf8BOMEncoding, raw)
}

func decodeLatin1(raw []byte) ([]byte, error) {
	return transcode(latin1Encoding, raw)
}

func transcode(enc encoding.Encoding, raw []byte) ([]byte, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("decode text: %w", err)
	}
	return out, nil
}
