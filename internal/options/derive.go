package options

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// DeriveName produces a display name when none was supplied: the first label
// of a URL target's host (www stripped, title-cased), or the stem of a local
// entry file.
func DeriveName(o *Options) string {
	if o.TargetKind == TargetFile {
		stem := strings.TrimSuffix(filepath.Base(o.TargetPath), filepath.Ext(o.TargetPath))
		if name := titleCaser.String(strings.ReplaceAll(stem, "-", " ")); name != "" {
			return name
		}
		return "Webcask App"
	}

	host := o.TargetHost()
	host = strings.TrimPrefix(host, "www.")
	label, _, _ := strings.Cut(host, ".")
	if label == "" {
		return "Webcask App"
	}
	return titleCaser.String(label)
}

// DeriveIdentifier builds the bundle identifier from the display name:
// com.webcask.<slug>, slug lowercase alphanumeric with single dashes.
func DeriveIdentifier(name string) string {
	slug := Slug(name)
	if slug == "" {
		slug = "app"
	}
	return "com.webcask." + slug
}

// Slug lowercases name and replaces every run of non-alphanumeric characters
// with a single dash, trimming dashes at both ends.
func Slug(name string) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
