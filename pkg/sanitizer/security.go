package sanitizer

// EscapeHTML replaces < > " ' / with their entity equivalents in a single
// left-to-right pass. The ampersand is left untouched, so escaping an already
// escaped string is a no-op.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// SanitizeFilename replaces every filesystem-unsafe character and every C0
// control character with an underscore. It does not collapse dot segments:
// rejecting traversal is the job of the string rules, not of this transform.
func SanitizeFilename(filename string) string {
	return unsafeFilenameRegex.ReplaceAllString(filename, "_")
}
