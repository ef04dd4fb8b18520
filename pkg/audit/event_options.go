package audit

import "maps"

// WithResource names what the event is about, e.g. ("form", formID).
func WithResource(resource, id string) EventOption {
	return func(e *Event) {
		e.Resource = resource
		e.ResourceID = id
	}
}

// WithMetadata merges values into the event metadata. Later keys win.
func WithMetadata(values map[string]any) EventOption {
	return func(e *Event) {
		if len(values) == 0 {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]any, len(values))
		}
		maps.Copy(e.Metadata, values)
	}
}

// WithResult overrides the result chosen by Log or LogError.
func WithResult(result Result) EventOption {
	return func(e *Event) {
		e.Result = result
	}
}
