package document

import (
	"path/filepath"
	"strings"
)

// binaryExtensions is the fixed table of file extensions discovery and the
// context analyzer treat as binary rather than decoding as UTF-8 text.
var binaryExtensions = map[string]bool{
	"exe": true, "dll": true, "so": true, "dylib": true, "o": true, "a": true,
	"lib": true, "obj": true, "class": true, "pyc": true, "pyo": true, "wasm": true,

	"zip": true, "tar": true, "gz": true, "bz2": true, "xz": true, "7z": true,
	"rar": true, "jar": true, "war": true, "ear": true,

	"png": true, "jpg": true, "jpeg": true, "gif": true, "bmp": true, "ico": true,
	"svg": true, "webp": true, "tiff": true, "psd": true,

	"mp3": true, "mp4": true, "wav": true, "flac": true, "ogg": true, "avi": true,
	"mkv": true, "mov": true, "wmv": true, "webm": true,

	"pdf": true, "doc": true, "docx": true, "xls": true, "xlsx": true,
	"ppt": true, "pptx": true, "odt": true,

	"db": true, "sqlite": true, "mdb": true,

	"ttf": true, "otf": true, "woff": true, "woff2": true, "eot": true,

	"bin": true, "dat": true, "pak": true, "bundle": true,
}

// IsBinaryFile reports whether path's extension matches the fixed
// binary-extension table used by discovery and the context analyzer.
func IsBinaryFile(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return binaryExtensions[ext]
}
