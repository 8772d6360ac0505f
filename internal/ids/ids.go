// Package ids generates identifiers for persisted records.
package ids

import "github.com/segmentio/ksuid"

// New returns a K-sortable unique id, so ids created later sort after earlier ones.
func New() string {
	return ksuid.New().String()
}
