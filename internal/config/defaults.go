package config

const (
	// DefaultTestCasePattern matches test case configuration files
	DefaultTestCasePattern = "*.ini"
	// DefaultManifestPattern matches manifest files inside a checker test directory
	DefaultManifestPattern = "*"
	// DefaultOutputTailBytes is how much installer output is kept for failure messages
	DefaultOutputTailBytes = 2048
	// DefaultEnvFile is loaded from the working directory when present
	DefaultEnvFile = ".env"
	// EnvPrefix prefixes environment overrides (INSTCHECK_PLATFORM, ...)
	EnvPrefix = "INSTCHECK_"
)

// DefaultPathsToIgnore are directory names skipped when scanning for test cases,
// in addition to hidden directories. Set paths_to_ignore in the config file to
// skip payload or scratch directories of a test case tree.
var DefaultPathsToIgnore = []string{}
