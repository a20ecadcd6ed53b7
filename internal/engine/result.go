package engine

// Result tells the host what an intent changed.
type Result struct {
	// Redraw is set when visible state changed.
	Redraw bool

	// ScrollIntoView is set when the caret moved and should be revealed.
	ScrollIntoView bool
}

var (
	noChange = Result{}
	repaint  = Result{Redraw: true}
	moved    = Result{Redraw: true, ScrollIntoView: true}
)

// Merge combines two results.
func (r Result) Merge(o Result) Result {
	return Result{
		Redraw:         r.Redraw || o.Redraw,
		ScrollIntoView: r.ScrollIntoView || o.ScrollIntoView,
	}
}

// Changed reports whether anything needs repainting.
func (r Result) Changed() bool {
	return r.Redraw || r.ScrollIntoView
}
