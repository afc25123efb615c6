package interfaces

// ProgressSink receives user-facing status messages from a pipeline run. It
// is a pure side channel: a nil sink changes no behavior. When replace is
// true the message supersedes the previously reported one.
type ProgressSink interface {
	Notify(msg string, replace bool)
}

// ProgressFunc adapts a function to the ProgressSink interface
type ProgressFunc func(msg string, replace bool)

func (f ProgressFunc) Notify(msg string, replace bool) {
	f(msg, replace)
}
