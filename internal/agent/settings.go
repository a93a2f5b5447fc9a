package agent

// Settings is a mapping of setting name to value. Settings attached to a
// Class are read-only; merge and clone operations always produce fresh maps.
type Settings map[string]any

// Clone returns a shallow copy of the settings. A nil receiver yields an
// empty, non-nil map.
func (s Settings) Clone() Settings {
	cloned := make(Settings, len(s))
	for k, v := range s {
		cloned[k] = v
	}
	return cloned
}

// MergeSettings merges base settings with overrides. With overwrite set the
// result is a copy of overrides alone; otherwise it is the union of both
// with overrides winning on key collisions. Neither input is mutated and the
// result is always a new map.
func MergeSettings(base, overrides Settings, overwrite bool) Settings {
	if overwrite {
		return overrides.Clone()
	}
	merged := base.Clone()
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
