package domain

// Shell selects the shell used to interpret command lines.
type Shell string

const (
	// ShellBash runs commands as `bash -c`.
	ShellBash Shell = "bash"
	// ShellSh runs commands as `sh -c`.
	ShellSh Shell = "sh"
)

// Program returns the shell executable name, defaulting to bash.
func (s Shell) Program() string {
	if s == ShellSh {
		return "sh"
	}
	return "bash"
}

// Config is the fully resolved configuration the core operates on.
// Environment overrides and file discovery are the CLI layer's business;
// by the time a Config exists every path is absolute and every flag final.
type Config struct {
	// Graph holds all declared projects, already validated.
	Graph *Graph
	// RootDir is the directory containing the config file. Project roots and
	// glob patterns are resolved relative to it.
	RootDir string
	// CacheDir is the absolute cache root.
	CacheDir string
	// Exec selects the shell for command execution.
	Exec Shell
	// ReadOnly disables every mutation of the cache store.
	ReadOnly bool
	// Hash is a digest of the raw configuration; any config change
	// invalidates every fingerprint derived from it.
	Hash string
}
