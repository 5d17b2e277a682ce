package cmd

// Wrap returns a copy of def whose handler and component handler run through
// mws. Component events have no Invocation, so only Handler is wrapped by the
// middleware chain; Component is passed through untouched.
func Wrap(def Definition, mws ...Middleware) Definition {
	if def.Handler != nil && len(mws) > 0 {
		def.Handler = Apply(def.Handler, mws...)
	}
	return def
}

// WrapEntry applies Wrap to whatever entry produces.
func WrapEntry(entry Entry, mws ...Middleware) Entry {
	return func() (Definition, error) {
		def, err := entry()
		if err != nil {
			return def, err
		}
		return Wrap(def, mws...), nil
	}
}
