package visualizer

// Options configures the visualization output.
type Options struct {
	// ShowTransitionNames labels every edge with its transition name
	ShowTransitionNames bool

	// MarkCustom appends a marker to edges driven by custom transitions
	MarkCustom bool

	// Direction controls diagram flow: "TB" (top-bottom) or "LR" (left-right)
	Direction string

	// HighlightPath highlights states along a path through the diagram
	HighlightPath []string

	// Current marks the state a bound subject is in
	Current string

	// NaturalOrder sorts states by name ("step2" before "step10") instead of declaration order
	NaturalOrder bool

	// Fenced wraps the diagram in a ```mermaid code fence
	Fenced bool
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowTransitionNames: true,
		MarkCustom:          true,
		Direction:           "TB",
		Fenced:              true,
	}
}

// WithShowTransitionNames enables/disables edge labels.
func (o Options) WithShowTransitionNames(show bool) Options {
	o.ShowTransitionNames = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path []string) Options {
	o.HighlightPath = path

	return o
}

// WithCurrent marks the current state.
func (o Options) WithCurrent(state string) Options {
	o.Current = state

	return o
}

// WithNaturalOrder enables/disables natural ordering of states.
func (o Options) WithNaturalOrder(natural bool) Options {
	o.NaturalOrder = natural

	return o
}

// WithFenced enables/disables the markdown code fence.
func (o Options) WithFenced(fenced bool) Options {
	o.Fenced = fenced

	return o
}
