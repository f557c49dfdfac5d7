package landmark

import (
	"os"

	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/kneelab/femurtrack/logging"
)

// LoadState is the outcome of loading a catalog source.
type LoadState int

const (
	// StateLoaded means the source parsed; the catalog may still have no entries.
	StateLoaded LoadState = iota
	// StateLoadFailed means the source could not be used and the catalog is empty.
	StateLoadFailed
)

func (s LoadState) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "load failed"
}

// FailureKind says why a load failed.
type FailureKind int

const (
	// FailureNone is the kind of a successful load.
	FailureNone FailureKind = iota
	// FailureMissing means the source does not exist or cannot be opened.
	FailureMissing
	// FailureMalformed means the source was read but did not parse.
	FailureMalformed
)

func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailureMissing:
		return "missing"
	case FailureMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// LoadResult is the result of LoadCatalog. Catalog is never nil: a failed load carries an
// empty catalog so lookups keep working and simply miss.
type LoadResult struct {
	Source  string
	State   LoadState
	Failure FailureKind
	Err     error
	Catalog *Catalog
}

// Loaded reports whether the source parsed.
func (lr *LoadResult) Loaded() bool {
	return lr.State == StateLoaded
}

// LoadCatalog reads the catalog at path. It never fails: a missing or malformed source is
// logged and reported in the result, alongside an empty catalog.
func LoadCatalog(path string, logger logging.Logger) *LoadResult {
	failed := func(kind FailureKind, err error) *LoadResult {
		logger.Warnw("landmark catalog unavailable", "path", path, "reason", kind.String(), "error", err)
		return &LoadResult{Source: path, State: StateLoadFailed, Failure: kind, Err: err, Catalog: NewCatalog()}
	}

	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return failed(FailureMissing, errors.Wrapf(err, "opening catalog %q", path))
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	catalog, err := ReadCatalog(f)
	if err != nil {
		return failed(FailureMalformed, errors.Wrapf(err, "parsing catalog %q", path))
	}
	logger.Infow("landmark catalog loaded", "path", path, "landmarks", catalog.Len())
	return &LoadResult{Source: path, State: StateLoaded, Catalog: catalog}
}
