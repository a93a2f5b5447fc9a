package templates

import "fmt"

// Manager is a read-only registry of template definitions, keyed by name
// and preserving file order.
type Manager struct {
	byName map[string]Definition
	names  []string
}

// NewManager builds a registry from definitions. Template names must be
// unique.
func NewManager(definitions []Definition) (*Manager, error) {
	m := &Manager{
		byName: make(map[string]Definition, len(definitions)),
		names:  make([]string, 0, len(definitions)),
	}
	for _, def := range definitions {
		if _, exists := m.byName[def.Name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTemplate, def.Name)
		}
		m.byName[def.Name] = def
		m.names = append(m.names, def.Name)
	}
	return m, nil
}

// NewManagerFromFile loads definitions from path and builds a registry.
func NewManagerFromFile(path string) (*Manager, error) {
	definitions, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return NewManager(definitions)
}

// FindByName returns the named definition.
func (m *Manager) FindByName(name string) (Definition, error) {
	def, ok := m.byName[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return def, nil
}

// Names returns the template names in file order.
func (m *Manager) Names() []string {
	return append([]string(nil), m.names...)
}

// All returns the definitions in file order.
func (m *Manager) All() []Definition {
	defs := make([]Definition, 0, len(m.names))
	for _, name := range m.names {
		defs = append(defs, m.byName[name])
	}
	return defs
}
