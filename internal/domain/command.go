package domain

// ExecCommand represents an external command to be executed.
// This type is used to pass command information between layers
// without exposing implementation details.
type ExecCommand struct {
	Program string
	Dir     string
	Args    []string
	Stdin   []byte // Optional data written to the command's stdin
}

// NewCommand creates an ExecCommand for a program with arguments.
func NewCommand(program string, args []string, dir string) *ExecCommand {
	return &ExecCommand{
		Program: program,
		Args:    args,
		Dir:     dir,
	}
}

// NewShellCommand creates an ExecCommand that runs a script through sh -c.
func NewShellCommand(script, dir string) *ExecCommand {
	return NewCommand("sh", []string{"-c", script}, dir)
}
