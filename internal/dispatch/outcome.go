package dispatch

// Outcome is what one backend produced for a prompt: either its text or the
// reason it failed. Renderers only need String; Failed lets callers tell the
// two apart.
type Outcome struct {
	text   string
	failed bool
}

// Success wraps a backend's answer.
func Success(text string) Outcome {
	return Outcome{text: text}
}

// Failure wraps a human-readable failure description.
func Failure(reason string) Outcome {
	return Outcome{text: reason, failed: true}
}

func (o Outcome) Failed() bool { return o.failed }

// String returns the answer for a success and the reason for a failure.
func (o Outcome) String() string { return o.text }
