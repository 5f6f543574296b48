package loader

import (
	"os"
	"sort"
)

// EnvLoader reads configuration overrides from environment variables.
type EnvLoader struct {
	mapping map[string]string // Env var -> config path
	lookup  func(string) (string, bool)
}

// NewEnvLoader creates a loader with the given env var to config path
// mapping.
func NewEnvLoader(mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		mapping: mapping,
		lookup:  os.LookupEnv,
	}
}

// Override is a config path set from an environment variable.
type Override struct {
	Env   string
	Path  string
	Value string
}

// Load returns the overrides for every mapped variable that is set, in
// env var name order.
// Note: Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() []Override {
	names := make([]string, 0, len(l.mapping))
	for env := range l.mapping {
		names = append(names, env)
	}
	sort.Strings(names)

	var out []Override
	for _, env := range names {
		if val, ok := l.lookup(env); ok {
			out = append(out, Override{Env: env, Path: l.mapping[env], Value: val})
		}
	}
	return out
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}
