// Package names validates identifiers that become file names under the rc
// directory.
package names

import (
	"fmt"
	"regexp"
)

const MaxCollectionLength = 128

var collectionPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateCollection checks a collection name. Names key cache directories
// (database_cached/<collection>) and route inputs (<collection>:<id>).
func ValidateCollection(name string) error {
	if name == "" {
		return fmt.Errorf("collection name is required")
	}
	if len(name) > MaxCollectionLength {
		return fmt.Errorf("collection name must be at most %d characters", MaxCollectionLength)
	}
	if !collectionPattern.MatchString(name) {
		return fmt.Errorf("collection name %q must match %q", name, collectionPattern.String())
	}
	return nil
}
