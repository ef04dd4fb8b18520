package sanitizer

import (
	"regexp"
	"strings"
)

// Pre-compiled patterns and replacers shared by the helpers.
var (
	// Characters forbidden in filenames on at least one major filesystem, plus C0 controls.
	unsafeFilenameRegex = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

	htmlEscaper = strings.NewReplacer(
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#x27;",
		"/", "&#x2F;",
	)
)
