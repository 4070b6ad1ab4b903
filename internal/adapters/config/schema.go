package config

// Memofile represents the structure of the memo.yaml configuration file.
type Memofile struct {
	Version  string                `yaml:"version"`
	Exec     string                `yaml:"exec"`
	CacheDir string                `yaml:"cache_dir"`
	Projects map[string]ProjectDTO `yaml:"projects"`
}

// ProjectDTO represents a project definition in the configuration.
type ProjectDTO struct {
	Root      string   `yaml:"root"`
	Inputs    []string `yaml:"inputs"`
	Outputs   []string `yaml:"outputs"`
	Env       []string `yaml:"env"`
	DependsOn []string `yaml:"depends_on"`
}
