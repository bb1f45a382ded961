package backfill

import "errors"

// ErrRunInProgress is returned when another backfill holds the run lock.
var ErrRunInProgress = errors.New("another backfill run is in progress")
