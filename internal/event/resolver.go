package event

// StatusOf classifies a single event into a session status. The state
// machine is memoryless: only the most recent record matters, which is
// what makes resolution idempotent and restart-safe.
//
// A ToolAsked for a non-interactive tool maps to Working even if an
// earlier interactive question is still open. Hook installation only
// subscribes PreToolUse to the interactive tool, so that sequence is not
// produced in practice.
func StatusOf(e Event) Status {
	switch e.Kind {
	case KindPromptSubmitted:
		return StatusWorking
	case KindToolAsked:
		if e.ToolName == InteractiveTool {
			return StatusAsking
		}
		return StatusWorking
	case KindToolAnswered:
		return StatusWorking
	case KindTurnStopped:
		return StatusIdle
	}
	return StatusFresh
}

// Resolve derives a session's current status from its event log at path.
// Empty, absent or unparseable logs resolve to Fresh; parse failures are
// never surfaced to the caller.
func Resolve(path string) Status {
	e, ok := Tail(path)
	if !ok {
		return StatusFresh
	}
	return StatusOf(e)
}
