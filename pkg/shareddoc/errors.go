package shareddoc

import "errors"

var (
	ErrUnsupportedValue = errors.New("shareddoc: unsupported value type")
	ErrMalformedUpdate  = errors.New("shareddoc: malformed update")
)
