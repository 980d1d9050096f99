package bridge

import (
	"go.uber.org/zap"

	"github.com/rupsys/rup/internal/diagx"
)

// logBulkDelivery records a relay delivery at debug level with a
// truncated structural preview, adapted from the source's log_bulk free
// function. The original additionally special-cased "arg"/"uid"
// dictionary keys for a RADICAL-specific payload schema; spec.md places
// any such schema out of scope, so only the generic preview mechanism
// survives here.
func logBulkDelivery(log *zap.Logger, bulk []any) {
	log.Debug("delivering bulk", zap.Int("n", len(bulk)), zap.String("preview", diagx.BulkPreview(bulk, 3)))
}
