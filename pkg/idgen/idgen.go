// Package idgen generates prefixed identifiers for stored records.
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Prefix tags the kind of record an ID belongs to.
type Prefix string

const (
	Dependency   Prefix = "dep"
	Notification Prefix = "ntf"
	InApp        Prefix = "inb"
	Task         Prefix = "tsk"
	User         Prefix = "usr"
	Board        Prefix = "brd"
	Request      Prefix = "req"
)

// Generate creates a new unique ID in the format "<prefix>-<uuid v4>".
func Generate(p Prefix) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate ID: %w", err)
	}
	return fmt.Sprintf("%s-%s", p, id.String()), nil
}

