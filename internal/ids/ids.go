package ids

import "github.com/segmentio/ksuid"

// New returns a sortable unique id for bills, users and sessions.
func New() string {
	return ksuid.New().String()
}
