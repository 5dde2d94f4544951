package chart

import "errors"

// ErrInvalidArgument is returned for inputs the engine refuses to lay out:
// unknown projections, impossible viewports and malformed observations.
var ErrInvalidArgument = errors.New("invalid argument")
