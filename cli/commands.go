package cli

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Check  CheckCmd  `cmd:"" help:"Parse and validate an SIE file, listing warnings."`
	Report ReportCmd `cmd:"" help:"Print financial ratios and monthly activity for a fiscal year."`
	Flow   FlowCmd   `cmd:"" help:"Emit the Sankey flow graph for a fiscal year as JSON."`
	Doctor DoctorCmd `cmd:"" help:"Doctor utilities for debugging SIE files."`
	Web    WebCmd    `cmd:"" help:"Start the analysis web server."`
}
