package landmark

import (
	"go.uber.org/atomic"

	"github.com/kneelab/femurtrack/logging"
)

// Holder publishes the current catalog to concurrent readers. Store, Reload, Catalog and
// Result are all safe to call from any goroutine; when reloads race, the last Store wins and
// readers always see one complete result.
type Holder struct {
	result *atomic.Pointer[LoadResult]
}

// NewHolder returns a holder whose catalog is empty until the first Store.
func NewHolder() *Holder {
	return &Holder{result: atomic.NewPointer(&LoadResult{
		State:   StateLoadFailed,
		Failure: FailureMissing,
		Catalog: NewCatalog(),
	})}
}

// Store replaces the published result.
func (h *Holder) Store(result *LoadResult) {
	h.result.Store(result)
}

// Reload loads path and publishes the result, whatever its state.
func (h *Holder) Reload(path string, logger logging.Logger) *LoadResult {
	result := LoadCatalog(path, logger)
	h.Store(result)
	return result
}

// Result returns the most recently published load result.
func (h *Holder) Result() *LoadResult {
	return h.result.Load()
}

// Catalog returns the most recently published catalog.
func (h *Holder) Catalog() *Catalog {
	return h.Result().Catalog
}
