package alloy

// registry holds all known declarations. It has no behavior beyond storage
// and lookup; callers synchronize access through the owning container.
type registry struct {
	declarations map[ComponentKey][]*Declaration
	order        []*Declaration
}

func newRegistry() *registry {
	return &registry{
		declarations: make(map[ComponentKey][]*Declaration, 32),
	}
}

// register stores a declaration. Two declarations for the same key whose
// profile sets overlap are a registration-time error, never resolved
// silently.
func (r *registry) register(d Declaration) error {
	if err := d.validate(); err != nil {
		return err
	}

	for _, existing := range r.declarations[d.Key] {
		if profilesOverlap(existing.Profiles, d.Profiles) {
			return &DuplicateRegistrationError{
				Key:      keyName(d.Key),
				Profiles: d.Profiles,
			}
		}
	}

	stored := &d
	r.declarations[d.Key] = append(r.declarations[d.Key], stored)
	r.order = append(r.order, stored)
	return nil
}

// lookup picks exactly one declaration for key under the active profile.
// Registration order across discovery passes is not guaranteed, so the
// ambiguity check runs here as well as at registration.
func (r *registry) lookup(key ComponentKey, active Profile) (*Declaration, error) {
	var match *Declaration
	count := 0
	for _, d := range r.declarations[key] {
		if profilesMatch(d.Profiles, active) {
			match = d
			count++
		}
	}
	switch {
	case count == 0:
		return nil, &NotFoundError{Key: keyName(key), Profile: active}
	case count > 1:
		return nil, &AmbiguousRegistrationError{Key: keyName(key), Profile: active, Count: count}
	}
	return match, nil
}

// active returns every declaration matching the active profile, in
// registration order.
func (r *registry) active(profile Profile) []*Declaration {
	out := make([]*Declaration, 0, len(r.order))
	for _, d := range r.order {
		if profilesMatch(d.Profiles, profile) {
			out = append(out, d)
		}
	}
	return out
}

func (r *registry) len() int {
	return len(r.order)
}

func (r *registry) keys() []ComponentKey {
	out := make([]ComponentKey, 0, len(r.order))
	seen := make(map[ComponentKey]struct{}, len(r.order))
	for _, d := range r.order {
		if _, ok := seen[d.Key]; ok {
			continue
		}
		seen[d.Key] = struct{}{}
		out = append(out, d.Key)
	}
	return out
}
