package httpserver

import "time"

// ShutdownTimeout bounds how long in-flight requests get to finish once the
// process receives a stop signal.
var ShutdownTimeout = 10 * time.Second
