package domain

// Project represents a cacheable unit of work: a command together with the
// input files, environment variables and output files that define it.
// It uses InternedString for fields that are frequently repeated to save memory.
type Project struct {
	Name      InternedString
	Root      InternedString
	Inputs    []InternedString
	Outputs   []InternedString
	Env       []InternedString
	DependsOn []InternedString
}

// InputPatterns returns the project's own declared input glob patterns as
// plain strings.
func (p *Project) InputPatterns() []string {
	return stringsOf(p.Inputs)
}

// OutputPatterns returns the project's declared output glob patterns as
// plain strings.
func (p *Project) OutputPatterns() []string {
	return stringsOf(p.Outputs)
}

// EnvNames returns the names of the environment variables that participate
// in the project's fingerprint.
func (p *Project) EnvNames() []string {
	return stringsOf(p.Env)
}

func stringsOf(in []InternedString) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.String()
	}
	return out
}
