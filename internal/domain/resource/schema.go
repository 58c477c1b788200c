package resource

// Schema declares everything the generic CRUD workflow needs to know about a
// record type. The four resource types are values of this struct, not code.
type Schema[T any] struct {
	// Resource is the singular name used in notices, logs and events.
	Resource string
	// Path is the admin URL segment, e.g. "projects".
	Path string
	Table string
	// Label is the tab title on the dashboard.
	Label     string
	OrderBy   string
	Ascending bool
	// Singleton resources are edited through one form instead of a list.
	Singleton bool
	Defaults  func() T
	// Required returns the JSON names of required fields that are empty.
	Required func(T) []string
}

func (s Schema[T]) New() T {
	if s.Defaults == nil {
		var zero T
		return zero
	}
	return s.Defaults()
}

func (s Schema[T]) Missing(v T) []string {
	if s.Required == nil {
		return nil
	}
	return s.Required(v)
}

// RequiredText collects the names whose value is blank, in declaration order.
func RequiredText(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if Blank(pairs[i+1]) {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
