package cmd

// Registry stores command definitions by name, in registration order. It is
// filled once at startup and only read afterwards, so it carries no lock;
// Register must not race with lookups.
type Registry struct {
	order []string
	defs  map[string]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds a definition. A duplicate name is rejected and the earlier
// definition stays in place.
func (r *Registry) Register(def Definition) error {
	switch {
	case def.Name == "":
		return &InvalidDefinitionError{Command: def.Name, Reason: "empty name"}
	case def.Handler == nil:
		return &InvalidDefinitionError{Command: def.Name, Reason: "nil handler"}
	case def.Cooldown < 0:
		return &InvalidDefinitionError{Command: def.Name, Reason: "negative cooldown"}
	}
	if _, exists := r.defs[def.Name]; exists {
		return &DuplicateCommandError{Command: def.Name}
	}
	r.defs[def.Name] = def
	r.order = append(r.order, def.Name)
	return nil
}

// Get returns the definition with the given name.
func (r *Registry) Get(name string) (Definition, bool) {
	def, ok := r.defs[name]
	return def, ok
}

// List returns all definitions in registration order.
func (r *Registry) List() []Definition {
	list := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.defs[name])
	}
	return list
}

// Len returns the number of registered commands.
func (r *Registry) Len() int { return len(r.order) }
