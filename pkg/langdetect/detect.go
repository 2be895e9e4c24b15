// Package langdetect sniffs discovered inputs: it names the language of a
// file and flags the ones a directory walk should leave alone (binary,
// vendored, or generated content).
package langdetect

import (
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// SniffSize is how many leading bytes Sniff needs to decide.
const SniffSize = 8000

const langText = "text"

// Info describes a sniffed file.
type Info struct {
	// Language is the lowercase language name, or "text" when unknown.
	Language string

	// Binary is set when the head contains a NUL byte.
	Binary bool

	// Vendored is set for paths under third-party directories.
	Vendored bool

	// Generated is set for files that declare themselves generated.
	Generated bool
}

// Skippable reports whether a directory walk should skip the file.
func (i Info) Skippable() bool {
	return i.Binary || i.Vendored
}

// Sniff inspects a slash-separated path and the first SniffSize bytes of
// its content.
func Sniff(path string, head []byte) Info {
	if len(head) > SniffSize {
		head = head[:SniffSize]
	}

	info := Info{
		Binary:   enry.IsBinary(head),
		Vendored: enry.IsVendor(path),
	}
	if info.Binary {
		info.Language = langText
		return info
	}

	info.Generated = enry.IsGenerated(path, head)
	info.Language = Detect(path, head)
	return info
}

// VendoredDir reports whether a slash-separated directory path holds
// third-party content.
func VendoredDir(dir string) bool {
	return enry.IsVendor(strings.TrimSuffix(dir, "/") + "/")
}

// Detect returns the lowercase language of a file, or "text" when
// detection fails.
func Detect(path string, content []byte) string {
	if len(content) == 0 {
		if lang, safe := enry.GetLanguageByExtension(path); safe {
			return normalize(lang)
		}
		return langText
	}

	if lang := enry.GetLanguage(path, content); lang != "" {
		return normalize(lang)
	}

	return langText
}

// IsMarkup reports whether lang is one of the markup languages the
// scanner is built for.
func IsMarkup(lang string) bool {
	switch lang {
	case "xml", "html", "svg", "xml property list", "xslt":
		return true
	}
	return false
}

func normalize(lang string) string {
	return strings.ToLower(lang)
}
