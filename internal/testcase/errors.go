package testcase

import "fmt"

// ConfigError reports a test case configuration that cannot be loaded
type ConfigError struct {
	Path    string
	Section string
	Key     string
	Err     error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Key != "":
		return fmt.Sprintf("%s: [%s] %s: %v", e.Path, e.Section, e.Key, e.Err)
	case e.Section != "":
		return fmt.Sprintf("%s: [%s]: %v", e.Path, e.Section, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
