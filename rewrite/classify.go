// CLAUDE:SUMMARY Two-state text/binary classification from extension tables with a 512-byte NUL sniff fallback.
package rewrite

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Class is the closed two-state file classification.
type Class int

const (
	ClassText Class = iota
	ClassBinary
)

func (c Class) String() string {
	if c == ClassBinary {
		return "binary"
	}
	return "text"
}

// sniffLen is how many leading bytes decide unknown extensions.
const sniffLen = 512

// textExtensions lists everything the rewrite pass treats as text:
// the detection scan set plus source and doc formats that may embed
// domain strings.
var textExtensions = map[string]bool{
	".html": true, ".htm": true, ".php": true, ".css": true, ".js": true,
	".txt": true, ".json": true, ".xml": true, ".sql": true, ".conf": true,
	".config": true, ".htaccess": true, ".env": true, ".ini": true,
	".yaml": true, ".yml": true,
	".md": true, ".rst": true, ".py": true, ".java": true,
	".cpp": true, ".c": true, ".h": true,
}

// binaryExtensions are never rewritten, whatever their content.
var binaryExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".bmp": true,
	".ico": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".zip": true, ".rar": true, ".7z": true, ".tar": true, ".gz": true,
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".flv": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true,
}

// Classify decides text vs binary from the extension tables; unknown
// extensions sample the first 512 bytes and any NUL byte means binary.
// Unreadable files classify binary so the rewrite pass leaves them alone.
// Pure in extension+content: repeated calls on unchanged input agree.
func Classify(path string) Class {
	ext := strings.ToLower(filepath.Ext(path))
	if binaryExtensions[ext] {
		return ClassBinary
	}
	if textExtensions[ext] {
		return ClassText
	}

	f, err := os.Open(path)
	if err != nil {
		return ClassBinary
	}
	defer f.Close()
	buf := make([]byte, sniffLen)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return ClassBinary
	}
	if bytes.IndexByte(buf[:n], 0) >= 0 {
		return ClassBinary
	}
	return ClassText
}
