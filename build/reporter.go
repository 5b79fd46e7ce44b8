package build

// Reporter receives verbose progress from a build. The orchestrator only
// calls it when Options.Verbose is set; it never influences control flow.
type Reporter interface {
	// Stage announces the start of pipeline step n of total.
	Stage(n, total int, title string)
	// Command echoes a command line before it runs.
	Command(line string)
	// CommandDone reports the exit status of the last command. err is set
	// when the process could not be started.
	CommandDone(line string, exitCode int, err error)
	// Note reports a detail such as the runtime source in use.
	Note(format string, args ...any)
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Stage(int, int, string)         {}
func (NopReporter) Command(string)                 {}
func (NopReporter) CommandDone(string, int, error) {}
func (NopReporter) Note(string, ...any)            {}
