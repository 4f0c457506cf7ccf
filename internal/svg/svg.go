// Package svg provides validation and repair helpers for SVG documents
// returned by the analysis backend.
package svg

import (
	"strings"
)

// Namespace is the SVG XML namespace URI.
const Namespace = "http://www.w3.org/2000/svg"

// XMLDeclaration is prepended to documents that declare no encoding.
const XMLDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="no"?>`

const namespaceAttr = `xmlns="` + Namespace + `"`

// Placeholder is substituted for content that has no SVG root element.
const Placeholder = `<svg xmlns="http://www.w3.org/2000/svg" width="800" height="600">
  <text x="50" y="50" font-size="20" fill="red">Invalid SVG content, unable to display</text>
</svg>`

// IsValid reports whether content plausibly is a well-formed SVG document:
// it must carry the root tags (or an XML/DOCTYPE declaration) and the
// SVG namespace attribute.
func IsValid(content string) bool {
	if content == "" {
		return false
	}

	hasTags := strings.Contains(content, "<svg") && strings.Contains(content, "</svg>")
	hasDoctype := strings.Contains(content, "<!DOCTYPE svg") || strings.Contains(content, "<?xml")
	hasNamespace := strings.Contains(content, namespaceAttr)

	return (hasTags || hasDoctype) && hasNamespace
}

// Normalize prepares content for display. It prepends an XML declaration when
// none is present and, if the result is still invalid, applies one of two
// repairs: a placeholder when there is no root tag, or namespace injection
// when the xmlns attribute is missing. Repairs are not re-validated.
func Normalize(content string) string {
	processed := content
	if !strings.Contains(content, "<?xml") && !strings.Contains(content, "encoding=") {
		processed = XMLDeclaration + "\n" + processed
	}

	if IsValid(processed) {
		return processed
	}

	switch {
	case !strings.Contains(processed, "<svg"):
		return Placeholder
	case !strings.Contains(processed, "xmlns="):
		return strings.Replace(processed, "<svg", "<svg "+namespaceAttr, 1)
	}
	return processed
}

// Preview returns the first 100 characters of content followed by "...",
// or "none" when content is empty.
func Preview(content string) string {
	if content == "" {
		return "none"
	}
	runes := []rune(content)
	if len(runes) > 100 {
		runes = runes[:100]
	}
	return string(runes) + "..."
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes text for safe inclusion in an HTML page.
func EscapeHTML(unsafe string) string {
	return htmlEscaper.Replace(unsafe)
}

// RepoName extracts the repository name from a repository URL: the last
// path segment without ".git". Links are typed by hand, so surrounding
// whitespace and trailing slashes are ignored.
func RepoName(url string) string {
	if url == "" {
		return ""
	}
	trimmed := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	trimmed = strings.TrimRight(trimmed, "/")
	parts := strings.Split(trimmed, "/")
	return parts[len(parts)-1]
}
