// Package command provides the cooperative task model the subsystems hand
// their long-running work to. A Command runs incrementally, one Execute per
// scheduler tick, until it reports finished or is canceled.
package command

// Command is a cooperative task driven by the Scheduler.
type Command interface {
	// Name returns the command identifier (for logging).
	Name() string

	// Initialize is called once when the command is scheduled.
	Initialize()

	// Execute is called on every scheduler tick while the command runs.
	Execute()

	// IsFinished reports whether the command has completed on its own.
	IsFinished() bool

	// End is called once when the command stops. interrupted is true when
	// the command was canceled rather than finishing on its own.
	End(interrupted bool)
}

// FuncCommand adapts plain functions to the Command interface. Nil fields
// are skipped.
type FuncCommand struct {
	CommandName string
	OnInit      func()
	OnExecute   func()
	Finished    func() bool
	OnEnd       func(interrupted bool)
}

func (f *FuncCommand) Name() string {
	if f.CommandName == "" {
		return "func"
	}
	return f.CommandName
}

func (f *FuncCommand) Initialize() {
	if f.OnInit != nil {
		f.OnInit()
	}
}

func (f *FuncCommand) Execute() {
	if f.OnExecute != nil {
		f.OnExecute()
	}
}

func (f *FuncCommand) IsFinished() bool {
	if f.Finished == nil {
		return false
	}
	return f.Finished()
}

func (f *FuncCommand) End(interrupted bool) {
	if f.OnEnd != nil {
		f.OnEnd(interrupted)
	}
}

// Run returns a command that calls fn on every tick and never finishes on
// its own. It runs until canceled.
func Run(name string, fn func()) Command {
	return &FuncCommand{CommandName: name, OnExecute: fn}
}

// RunOnce returns a command that calls fn on its first tick and finishes.
func RunOnce(name string, fn func()) Command {
	done := false
	return &FuncCommand{
		CommandName: name,
		OnExecute: func() {
			fn()
			done = true
		},
		Finished: func() bool { return done },
	}
}
