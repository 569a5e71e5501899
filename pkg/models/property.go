package models

// Property is one entry of a metadata property set. Most entries only carry a
// display name; some additionally carry a platform specification id (e.g.
// "pc_windows"). Two entries with the same name but different spec ids are
// distinct.
type Property struct {
	Name   string `json:"name,omitempty"`
	SpecID string `json:"spec_id,omitempty"`
}

// PropertySet is a set of properties keyed on the (name, spec id) pair.
// Insertion order is preserved for stable JSON output, but no ordering is
// guaranteed semantically.
type PropertySet []Property

// Add inserts a named property, ignoring empty names and duplicates.
func (s *PropertySet) Add(name string) {
	if name == "" {
		return
	}
	s.add(Property{Name: name})
}

// AddSpec inserts a specification-id property, ignoring empty ids and
// duplicates.
func (s *PropertySet) AddSpec(specID string) {
	if specID == "" {
		return
	}
	s.add(Property{SpecID: specID})
}

func (s *PropertySet) add(p Property) {
	for _, existing := range *s {
		if existing == p {
			return
		}
	}
	*s = append(*s, p)
}

// ContainsName reports whether a property with the given display name exists.
func (s PropertySet) ContainsName(name string) bool {
	for _, p := range s {
		if p.Name == name {
			return true
		}
	}
	return false
}

// ContainsSpec reports whether a property with the given spec id exists.
func (s PropertySet) ContainsSpec(specID string) bool {
	for _, p := range s {
		if p.SpecID == specID {
			return true
		}
	}
	return false
}

// Names returns the display names in insertion order, skipping spec-only
// entries.
func (s PropertySet) Names() []string {
	out := make([]string, 0, len(s))
	for _, p := range s {
		if p.Name != "" {
			out = append(out, p.Name)
		}
	}
	return out
}
