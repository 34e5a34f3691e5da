package trace

// Tracer receives evaluation lifecycle events. The dispatcher and handlers
// report through it instead of logging directly, so a UI can surface the
// decisions a cell evaluation made.
type Tracer interface {
	// ProbeDecision reports one handler's probe outcome for a cell.
	ProbeDecision(cellID, handlerName string, applicable bool, priority int, reason string)

	// MatchFound reports the handler selected to execute a cell.
	MatchFound(cellID, handlerName string, priority int)

	// RewriteApplied reports a markup rewrite, such as an evaluated
	// integral being spliced into the cell.
	RewriteApplied(cellID, handlerName, before, after string)

	// ResolutionFailed reports a recoverable failure that was skipped.
	ResolutionFailed(cellID, handlerName, detail string)
}

// NopTracer discards all events.
type NopTracer struct{}

func (NopTracer) ProbeDecision(string, string, bool, int, string) {}
func (NopTracer) MatchFound(string, string, int)                  {}
func (NopTracer) RewriteApplied(string, string, string, string)   {}
func (NopTracer) ResolutionFailed(string, string, string)         {}

// LogTracer forwards events to a Logger at debug level, errors at warn.
type LogTracer struct {
	logger *Logger
}

// NewLogTracer creates a tracer backed by the given logger.
func NewLogTracer(l *Logger) *LogTracer {
	if l == nil {
		l = NullLogger
	}
	return &LogTracer{logger: l}
}

func (t *LogTracer) ProbeDecision(cellID, handlerName string, applicable bool, priority int, reason string) {
	lg := t.logger.WithField("cell", cellID).WithField("handler", handlerName)
	if reason != "" {
		lg = lg.WithField("reason", reason)
	}
	lg.Debug("probe: applicable=%v priority=%d", applicable, priority)
}

func (t *LogTracer) MatchFound(cellID, handlerName string, priority int) {
	t.logger.WithField("cell", cellID).WithField("handler", handlerName).
		Debug("selected at priority %d", priority)
}

func (t *LogTracer) RewriteApplied(cellID, handlerName, before, after string) {
	t.logger.WithField("cell", cellID).WithField("handler", handlerName).
		Debug("rewrite: %q -> %q", before, after)
}

func (t *LogTracer) ResolutionFailed(cellID, handlerName, detail string) {
	t.logger.WithField("cell", cellID).WithField("handler", handlerName).
		Warn("resolution failed: %s", detail)
}
