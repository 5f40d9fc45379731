package scaffold

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultName is the project name used when none is given
const DefaultName = "sample"

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidateProjectName rejects names that cannot serve as both a file name
// component and a distribution name. The package name derived from a valid
// name is always a valid directory under src/.
func ValidateProjectName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}

	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}

	// No dots, so no "..", no separators and no hidden names
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}

	return nil
}
