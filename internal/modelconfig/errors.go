package modelconfig

import "errors"

var (
	ErrRead           = errors.New("modelconfig: read failed")
	ErrMalformed      = errors.New("modelconfig: malformed tables")
	ErrLengthMismatch = errors.New("modelconfig: table lengths differ")
	ErrUnknownTarget  = errors.New("modelconfig: mapping targets an unknown slot")
	ErrMixedCombine   = errors.New("modelconfig: slot has conflicting combine rules")
)
