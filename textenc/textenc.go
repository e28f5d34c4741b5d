// CLAUDE:SUMMARY Best-effort charset detection and decoding for site files, with re-encoding for write-back.
// Package textenc reads site files whose encoding is unknown.
//
// Packaged websites mix UTF-8 templates with cp1251 legacy pages and
// windows-1252 exports. Decoding is best-effort: a charset sniff first,
// then a fixed fallback chain. Callers pick the chain that matches their
// tolerance — detection scans stop at ascii, rewriting also accepts
// windows-1252 so it can write the file back in its original encoding.
package textenc

import (
	"bytes"
	"errors"
	"os"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// ErrUnreadable is returned when no encoding in the chain can decode a file.
var ErrUnreadable = errors.New("textenc: no encoding could decode content")

// DetectChain is the fallback chain used by content scanners.
var DetectChain = []string{"utf-8", "cp1251", "latin1", "ascii"}

// RewriteChain is the fallback chain used by the rewrite pipeline.
// It additionally accepts windows-1252 so rewritten files keep their
// original encoding on write-back.
var RewriteChain = []string{"utf-8", "cp1251", "latin1", "ascii", "windows-1252"}

// ReadFile reads and decodes the file at path.
// It returns the decoded content and the name of the encoding that
// succeeded, so the caller can re-encode on write-back.
func ReadFile(path string, chain []string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	return Decode(data, chain)
}

// Decode decodes raw bytes: charset sniff first (honored only when the
// sniffer is certain), then the fallback chain in order.
func Decode(data []byte, chain []string) (string, string, error) {
	if enc, name, certain := charset.DetermineEncoding(data, ""); certain {
		if decoded, err := enc.NewDecoder().Bytes(data); err == nil {
			return string(decoded), name, nil
		}
	}
	for _, name := range chain {
		if text, ok := decodeAs(data, name); ok {
			return text, name, nil
		}
	}
	return "", "", ErrUnreadable
}

// Encode re-encodes text under the named encoding for write-back.
// Unknown names and unrepresentable content fall back to UTF-8.
func Encode(text, name string) []byte {
	var cm *charmap.Charmap
	switch name {
	case "cp1251", "windows-1251":
		cm = charmap.Windows1251
	case "latin1", "iso-8859-1":
		cm = charmap.ISO8859_1
	case "windows-1252":
		cm = charmap.Windows1252
	default:
		return []byte(text)
	}
	out, err := encoding.ReplaceUnsupported(cm.NewEncoder()).Bytes([]byte(text))
	if err != nil {
		return []byte(text)
	}
	return out
}

// decodeAs decodes data strictly under one named encoding.
// Strictness mirrors classic codec behaviour: bytes a codec leaves
// undefined reject the whole file so the chain can move on.
func decodeAs(data []byte, name string) (string, bool) {
	switch name {
	case "utf-8":
		if !utf8.Valid(data) {
			return "", false
		}
		return string(data), true
	case "cp1251":
		// 0x98 is the single hole in the cp1251 table.
		if bytes.IndexByte(data, 0x98) >= 0 {
			return "", false
		}
		return charmapString(charmap.Windows1251, data)
	case "latin1":
		return charmapString(charmap.ISO8859_1, data)
	case "ascii":
		for _, b := range data {
			if b >= 0x80 {
				return "", false
			}
		}
		return string(data), true
	case "windows-1252":
		for _, b := range data {
			switch b {
			case 0x81, 0x8d, 0x8f, 0x90, 0x9d:
				return "", false
			}
		}
		return charmapString(charmap.Windows1252, data)
	}
	return "", false
}

func charmapString(cm *charmap.Charmap, data []byte) (string, bool) {
	decoded, err := cm.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(decoded), true
}
