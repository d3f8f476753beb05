package probes

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// decodeConsole converts command output to UTF-8. Windows console tools
// write in the OEM code page, which for Western European locales is CP850;
// localized ping output ("Mínimo", "Máximo") arrives in that encoding.
func decodeConsole(b []byte, goos string) string {
	if utf8.Valid(b) || goos != "windows" {
		return strings.ToValidUTF8(string(b), "")
	}
	decoded, _, err := transform.Bytes(charmap.CodePage850.NewDecoder(), b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "")
	}
	return string(decoded)
}

// shellMeta are characters stripped from host and domain inputs.
const shellMeta = ";&|$`<>(){}[]!\\'\"*?~#^\n\r\t "

// SanitizeTarget strips shell metacharacters and whitespace from a host or
// domain, and removes leading dashes so the value cannot be read as a flag.
func SanitizeTarget(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(shellMeta, r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimLeft(cleaned, "-")
}
