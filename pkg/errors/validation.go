package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNodeIDLength = 256

// reservedNodeIDPrefixes are taken by connector and marker elements.
var reservedNodeIDPrefixes = []string{"line-", "pointstart-", "pointend-", "arrow-"}

// ValidateNodeID validates a node identifier.
// Node ids end up in element ids and in connector ids, so the rules are
// conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - No quotes or angle brackets
//   - Maximum length of 256 characters
//   - Not "arrow" and no line-, pointstart-, pointend- or arrow- prefix
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}

	if len(id) > maxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains whitespace or control characters", id)
		}
	}

	if strings.ContainsAny(id, `"'<>&`) {
		return New(ErrCodeInvalidNodeID, "node id %q contains markup characters", id)
	}

	for _, prefix := range reservedNodeIDPrefixes {
		if strings.HasPrefix(id, prefix) {
			return New(ErrCodeInvalidNodeID, "node id %q uses the reserved prefix %q", id, prefix)
		}
	}
	if id == "arrow" {
		return New(ErrCodeInvalidNodeID, "node id %q is reserved", id)
	}

	return nil
}

var (
	hexColorRegex  = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
	funcColorRegex = regexp.MustCompile(`^(rgb|rgba|hsl|hsla)\([0-9.,%\s]+\)$`)
	nameColorRegex = regexp.MustCompile(`^[a-zA-Z]+$`)
)

// ValidateColor validates a CSS color string: hex (#rgb, #rrggbb and their
// alpha forms), rgb()/rgba()/hsl()/hsla() or a bare color keyword.
func ValidateColor(color string) error {
	if color == "" {
		return New(ErrCodeInvalidColor, "color cannot be empty")
	}
	if hexColorRegex.MatchString(color) || funcColorRegex.MatchString(color) || nameColorRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidColor, "invalid color: %q", color)
}

var handlerNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// ValidateHandlerName validates the name under which an event handler is
// registered or bound.
func ValidateHandlerName(name string) error {
	if !handlerNameRegex.MatchString(name) {
		return New(ErrCodeInvalidHandler, "invalid handler name: %q", name)
	}
	return nil
}

// ValidatePath validates a spec file path received from a remote client.
// It checks for:
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path must be relative")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}
