package heap

import "errors"

// ErrInvalidArgument is returned (optionally wrapped via fmt.Errorf's %w)
// when a constructor or mutating call is given an argument that violates
// a documented constraint. It renders spec.md §7's InvalidArgument kind.
var ErrInvalidArgument = errors.New("heap: invalid argument")
