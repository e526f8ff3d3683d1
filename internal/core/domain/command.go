package domain

// Command is an external process delegated to the host.
type Command struct {
	// Dependency and Stage label the command's log lines.
	Dependency string
	Stage      Stage
	// Args holds the program followed by its arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is the complete environment in "KEY=VALUE" form.
	Env []string
}

// Program returns the executable name, or "" for an empty command.
func (c Command) Program() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}
