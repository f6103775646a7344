package domain

import "strings"

// Object store layout:
//
//	content/{section}/                    directory marker
//	content/{section}/index.json          section index
//	content/{section}/{slug}/             directory marker
//	content/{section}/{slug}/desc.json    content record
//	content/{section}/{slug}/{filename}   media
//
// Inputs are expected to be validated section and slug strings.

const (
	contentRoot = "content/"
	descFile    = "desc.json"
	indexFile   = "index.json"
)

// SectionPrefix returns the marker key for a section directory.
func SectionPrefix(section Section) string {
	return contentRoot + string(section) + "/"
}

// RecordPrefix returns the marker key for a record directory.
func RecordPrefix(section Section, slug string) string {
	return SectionPrefix(section) + slug + "/"
}

// DescKey returns the key of the content record for (section, slug).
func DescKey(section Section, slug string) string {
	return RecordPrefix(section, slug) + descFile
}

// SectionIndexKey returns the key of the section index document.
func SectionIndexKey(section Section) string {
	return SectionPrefix(section) + indexFile
}

// MediaKey returns the key of a media file stored beside a record.
func MediaKey(section Section, slug, filename string) string {
	return RecordPrefix(section, slug) + filename
}

// SlugFromDescKey reports whether key addresses a content record directly
// under the section prefix, returning its slug when it does.
func SlugFromDescKey(section Section, key string) (string, bool) {
	rest, ok := strings.CutPrefix(key, SectionPrefix(section))
	if !ok {
		return "", false
	}
	slug, ok := strings.CutSuffix(rest, "/"+descFile)
	if !ok || slug == "" || strings.Contains(slug, "/") {
		return "", false
	}
	return slug, true
}
