package tiler_test

import (
	"github.com/pixelbridge/nddi/dct"
	"github.com/pixelbridge/nddi/tiler"
	"github.com/pixelbridge/nddi/tilecache"
)

// These declarations are the test: they fail to compile if any of the
// three tilers drift from the shared interface.
var (
	_ tiler.Tiler = (*dct.Tiler)(nil)
	_ tiler.Tiler = (*dct.ScaledTiler)(nil)
	_ tiler.Tiler = (*tilecache.Tiler)(nil)
)
