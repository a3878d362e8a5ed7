package blend

import(
	"errors"

	"github.com/abworrall/panoblend/pkg/pyramid"
)

var(
	// ErrDepthRegression means a tile supports fewer pyramid levels than
	// the pyramid already has. The tile is rejected, nothing changes.
	ErrDepthRegression = errors.New("decreasing level count")

	// ErrAllocation is fatal to the whole panorama; once a compositer
	// has hit it, every later call fails with it too.
	ErrAllocation = pyramid.ErrAllocation

	// ErrProcessing means the tile was malformed; only that tile is lost.
	ErrProcessing = pyramid.ErrProcessing
)
