// pattern: Functional Core
package manifest

import (
	"fmt"
	"regexp"
	"strings"
)

// validAppNameRe matches valid app names: alphanumeric start, then
// alphanumeric, dots, underscores, hyphens.
var validAppNameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// reservedNames are folder names that can never be app identifiers because
// they collide with the template payload or path special cases.
var reservedNames = map[string]bool{
	".":        true,
	"..":       true,
	"template": true,
}

// ValidateAppName checks that an app name is usable as a folder name under
// the apps directory. A failure here is per-entry, not fatal.
func ValidateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("app name cannot be empty")
	}
	if len(name) > 100 {
		return fmt.Errorf("app name too long (max 100 characters)")
	}
	if reservedNames[name] {
		return fmt.Errorf("app name %q is reserved", name)
	}
	if !validAppNameRe.MatchString(name) {
		return fmt.Errorf("invalid app name %q: must start with alphanumeric, may contain a-z A-Z 0-9 . _ -", name)
	}
	// Disallow ".." path traversal
	if strings.Contains(name, "..") {
		return fmt.Errorf("app name cannot contain '..'")
	}
	return nil
}
