package weight

import "errors"

var errShortRead = errors.New("weight: short read while decoding binary weight")
