package sanitize

import (
	"regexp"
	"strings"
)

var (
	ordinalPrefix = regexp.MustCompile(`^\d+\.`)
	unsafeChars   = regexp.MustCompile(`[\\:<>"/|?*]`)
)

// Clean builds a cross-platform safe directory or file name component from a
// free-text title. A leading "<digits>." ordinal is dropped (ordering is
// already encoded in the array position, the textual prefix is redundant),
// then characters illegal on common filesystems, then surrounding whitespace.
//
// Clean is idempotent, which keeps the on-disk layout stable across runs.
// Stripping runs to a fixpoint so titles with stacked ordinal prefixes cannot
// produce a different name on a second pass.
func Clean(name string) string {
	for {
		next := cleanOnce(name)
		if next == name {
			return name
		}
		name = next
	}
}

func cleanOnce(name string) string {
	name = strings.TrimSpace(name)
	name = ordinalPrefix.ReplaceAllString(name, "")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
