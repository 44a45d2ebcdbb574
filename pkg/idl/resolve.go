package idl

import "fmt"

// ErrCyclicInheritance is returned by Resolve when an aspect's inherits
// chain (possibly through several protocols) re-enters itself.
type ErrCyclicInheritance struct {
	Path []string
}

func (e *ErrCyclicInheritance) Error() string {
	s := "idl: circular inheritance"
	for i, name := range e.Path {
		if i > 0 {
			s += " -> "
		} else {
			s += ": "
		}
		s += name
	}
	return s
}

// ErrDuplicateAspect is returned by Resolve when the same aspect name
// appears in more than one input protocol (§4.G "Duplicate aspect names
// across all input protocols are fatal").
type ErrDuplicateAspect struct {
	Name string
}

func (e *ErrDuplicateAspect) Error() string {
	return fmt.Sprintf("idl: duplicate aspect name %q across protocols", e.Name)
}

// ErrUnknownAspect is returned when an inherits entry names an aspect not
// present in any input protocol.
type ErrUnknownAspect struct {
	Name string
}

func (e *ErrUnknownAspect) Error() string {
	return fmt.Sprintf("idl: unknown aspect %q in inherits", e.Name)
}

// visitState tracks DFS progress per aspect name to detect cycles without
// false positives on diamond inheritance (an aspect reachable by two
// different paths is visited, not re-entered).
type visitState int

const (
	unvisited visitState = iota
	visiting
	resolved
)

// Resolve computes ID/opcode hashes and ResolvedInherits for every aspect
// across all of protocols, in place. Protocols are resolved together
// because an aspect in one protocol may inherit an aspect defined in
// another (§3 Protocol: "resolved_inherits contains the transitive
// inheritance closure").
func Resolve(protocols []*Protocol) error {
	byName := make(map[string]*Aspect)
	for _, p := range protocols {
		p.hashAspectAndMembers()
		for i := range p.Aspects {
			a := &p.Aspects[i]
			if _, dup := byName[a.Name]; dup {
				return &ErrDuplicateAspect{Name: a.Name}
			}
			byName[a.Name] = a
		}
	}

	state := make(map[string]visitState, len(byName))
	for name := range byName {
		if state[name] == resolved {
			continue
		}
		if _, err := resolveAspect(name, byName, state, nil); err != nil {
			return err
		}
	}
	return nil
}

// resolveAspect performs the DFS-with-cycle-detection from §4.G
// "Inheritance resolution": depth-first traverse inherits, detect cycles
// via a visiting set, fail on re-entry, skip already-visited aspects. The
// returned slice is a's deterministic DFS-order transitive closure,
// memoized onto a.ResolvedInherits.
func resolveAspect(name string, byName map[string]*Aspect, state map[string]visitState, path []string) ([]string, error) {
	a, ok := byName[name]
	if !ok {
		return nil, &ErrUnknownAspect{Name: name}
	}

	switch state[name] {
	case resolved:
		return a.ResolvedInherits, nil
	case visiting:
		return nil, &ErrCyclicInheritance{Path: append(append([]string{}, path...), name)}
	}

	state[name] = visiting
	path = append(path, name)

	seen := make(map[string]bool)
	var closure []string
	for _, parent := range a.DirectInherits {
		parentClosure, err := resolveAspect(parent, byName, state, path)
		if err != nil {
			return nil, err
		}
		if !seen[parent] {
			seen[parent] = true
			closure = append(closure, parent)
		}
		for _, anc := range parentClosure {
			if !seen[anc] {
				seen[anc] = true
				closure = append(closure, anc)
			}
		}
	}

	a.ResolvedInherits = closure
	state[name] = resolved
	return closure, nil
}
