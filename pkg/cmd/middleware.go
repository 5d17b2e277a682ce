package cmd

// Middleware wraps a handler (recovery, timeouts, metrics). The wrapped value
// is still a HandlerFunc.
type Middleware func(HandlerFunc) HandlerFunc

// Apply applies middlewares in order; the first in the list is the outermost.
func Apply(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
