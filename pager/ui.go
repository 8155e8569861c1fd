package pager

// UI is the surface the pager needs from the rendering layer. The
// pager never draws anything itself: it hands out spinner frames and
// status lines and asks whether the user pressed cancel.
type UI interface {
	// ShowSpinnerFrame renders one frame of the modal progress
	// indicator together with the message.
	ShowSpinnerFrame(message string)
	// PollCancelKey reports whether a cancel keypress is pending.
	// Polled once per progress tick; must not block.
	PollCancelKey() bool
	// ReportStatus shows an informational message.
	ReportStatus(message string)
	// ReportError shows an error message.
	ReportError(message string)
}

var _ UI = (*NopUI)(nil)

// NopUI discards everything and never cancels. Used in tests and as a
// fallback when no UI is attached.
type NopUI struct{}

func (*NopUI) ShowSpinnerFrame(string) {}
func (*NopUI) PollCancelKey() bool     { return false }
func (*NopUI) ReportStatus(string)     {}
func (*NopUI) ReportError(string)      {}
