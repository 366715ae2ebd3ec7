package errors

import "errors"

// ErrOptimisticLock is returned when an update targets a record whose
// version changed since it was read.
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")
