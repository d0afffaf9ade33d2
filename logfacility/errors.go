package logfacility

import "errors"

// ErrInvalidArgument is returned by constructors given a nonsensical
// capacity or configuration value.
var ErrInvalidArgument = errors.New("logfacility: invalid argument")

// ErrInvalidFormat is returned by ReadTextConfig/ReadBinaryConfig when the
// input is malformed (per §6's "a malformed line aborts the read").
var ErrInvalidFormat = errors.New("logfacility: invalid format")
