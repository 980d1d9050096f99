// Package diagx provides spew-backed diagnostic dumping for error chains
// and message bulks, adapted from the teacher repo's pkg/fmtt/printe.go.
package diagx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

var bulkDumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisableMethods:          true,
	DisablePointerAddresses: true,
	MaxDepth:                3,
}

// ErrChain renders an error's Unwrap chain, one layer per line, for logs
// where %+v is too terse and a full spew.Dump is too noisy.
func ErrChain(err error) string {
	if err == nil {
		return "<nil>"
	}
	var b strings.Builder
	for i, e := 0, err; e != nil; i, e = i+1, errors.Unwrap(e) {
		fmt.Fprintf(&b, "[%d] %T: %v\n", i, e, e)
	}
	return b.String()
}

// BulkPreview renders the first n items of a bulk delivery for debug
// logging without dumping an unbounded payload into the log stream.
func BulkPreview(items []any, n int) string {
	if len(items) == 0 {
		return "[]"
	}
	if n <= 0 || n > len(items) {
		n = len(items)
	}
	var b strings.Builder
	b.WriteString(bulkDumpConfig.Sdump(items[:n]))
	if n < len(items) {
		fmt.Fprintf(&b, "... (%d more)\n", len(items)-n)
	}
	return b.String()
}
