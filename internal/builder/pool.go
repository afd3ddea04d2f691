package builder

import (
	"sync"

	"github.com/KromDaniel/regengo/internal/options"
	"github.com/KromDaniel/regengo/internal/pattern"
)

// builderPool recycles Builder values across independent compilations:
// each compilation's instruction/register/intern slices are expensive
// to grow from zero, and regexes compile one after another far more
// often than they compile concurrently.
var builderPool = sync.Pool{
	New: func() any {
		return New(options.Default(), pattern.CaptureList{})
	},
}

// Acquire returns a Builder ready for a new compilation, reusing a
// pooled instance's backing arrays when one is available. Callers must
// call Release when the Builder (and the Program returned by its
// Assemble) are no longer needed — Assemble already copies everything
// it returns, so it is safe to Release immediately after calling it.
func Acquire(initial options.Options, captures pattern.CaptureList) *Builder {
	b := builderPool.Get().(*Builder)
	b.Reset(initial, captures)
	return b
}

// Release returns b to the pool. b must not be used again afterward.
func Release(b *Builder) {
	builderPool.Put(b)
}
