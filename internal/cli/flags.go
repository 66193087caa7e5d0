package cli

import "instcheck/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile  string
	Verbose     bool
	Prefix      string
	Output      string
	Platform    string
	Interpreter string
	NameFilter  string
	Record      bool
	FailExit    bool
	NoProgress  bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:  f.ConfigFile,
		Verbose:     f.Verbose,
		Prefix:      f.Prefix,
		Output:      f.Output,
		Platform:    f.Platform,
		Interpreter: f.Interpreter,
		NameFilter:  f.NameFilter,
		Record:      f.Record,
		FailExit:    f.FailExit,
		NoProgress:  f.NoProgress,
	}
}
