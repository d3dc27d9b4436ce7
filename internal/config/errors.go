package config

import "fmt"

// ConfigNotFoundError means the config file does not exist. LoadOrDefault
// treats it as "use the defaults".
type ConfigNotFoundError struct {
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s (run 'geocalc config init' to create one)", e.Path)
}

// InvalidConfigError reports a config file that does not parse or holds
// out-of-range values.
type InvalidConfigError struct {
	Path string
	Err  error

	// Backup is the .bak copy written by the last Save, if one exists.
	Backup string
}

func (e *InvalidConfigError) Error() string {
	msg := fmt.Sprintf("invalid config %s:\n%v\n", e.Path, e.Err)
	if e.Backup != "" {
		return msg + "Hint: the previous version is kept at " + e.Backup
	}
	return msg + "Hint: fix the value or run 'geocalc config init --force' to start from defaults"
}

func (e *InvalidConfigError) Unwrap() error { return e.Err }

// PermissionError reports a config file or directory that cannot be read or written.
type PermissionError struct {
	Path string
	Op   string // "read" or "write"
	Err  error
}

func (e *PermissionError) Error() string {
	fix := "chmod u+w " + e.Path + ", or pass --config with a writable path"
	if e.Op == "read" {
		fix = "chmod u+r " + e.Path
	}
	return fmt.Sprintf("cannot %s config %s: permission denied\nFix: %s", e.Op, e.Path, fix)
}

func (e *PermissionError) Unwrap() error { return e.Err }
