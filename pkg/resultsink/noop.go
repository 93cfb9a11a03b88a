package resultsink

import "context"

// Noop discards every report. It's the default sink when the CLI is run
// without an export target configured.
type Noop struct{}

// Export implements ResultSink by doing nothing.
func (Noop) Export(context.Context, Report) error { return nil }
