package walk

import "strings"

// hiddenName is the cheap name-level hidden check used while listing a
// directory. The platform hidden-attribute policy is enforced again by
// the resolver when each full path is re-validated.
func hiddenName(name string) bool {
	return strings.HasPrefix(name, ".")
}
