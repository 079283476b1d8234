package service

import (
	"strings"
)

const (
	DefaultTitle       = "Untitled Item"
	DefaultDescription = "No description generated."
)

type Caption struct {
	Title       string
	Description string
}

// ParseCaption extracts Title/Description lines from free-form model output.
// It is total: any input, including garbage, produces a usable Caption.
//
// Fallbacks, in order:
//   - both lines found: both used, trimmed
//   - no title line: title is DefaultTitle
//   - no description line: description falls back to the entire raw text,
//     trimmed, or DefaultDescription when the text is blank
func ParseCaption(raw string) Caption {
	var (
		title, description string
		titleFound         bool
		descriptionFound   bool
	)

	for _, line := range strings.Split(raw, "\n") {
		if !titleFound {
			if rest, ok := matchPrefix(line, "title:"); ok {
				title = strings.TrimSpace(rest)
				titleFound = true
				continue
			}
		}
		if !descriptionFound {
			if rest, ok := matchPrefix(line, "description:"); ok {
				description = strings.TrimSpace(rest)
				descriptionFound = true
			}
		}
	}

	if !titleFound {
		title = DefaultTitle
	}
	if !descriptionFound {
		// Whole raw text, including the title's own line when one matched.
		// Looks redundant but mirrors the established intake behavior.
		description = strings.TrimSpace(raw)
		if description == "" {
			description = DefaultDescription
		}
	}

	return Caption{Title: title, Description: description}
}

// matchPrefix reports whether the line starts with the given label,
// case-insensitively, ignoring leading whitespace.
func matchPrefix(line, label string) (string, bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < len(label) {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len(label)], label) {
		return "", false
	}
	return trimmed[len(label):], true
}
