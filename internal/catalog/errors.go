package catalog

import "errors"

var ErrUnknownKind = errors.New("unknown catalog kind")
