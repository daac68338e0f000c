package server

import "errors"

// Returned when the daemon fails to start, listen, or dispatch.
var ErrServer = errors.New("server operation failed")
