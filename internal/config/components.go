package config

import "time"

// SourceType is the identifier for source types that can be found in config
type SourceType string

const (
	FileKey    SourceType = "file"
	NotifyKey  SourceType = "notify"
	CronKey    SourceType = "cron"
	ProcessKey SourceType = "process"
)

var sourceTypes = map[SourceType]bool{
	FileKey:    true,
	NotifyKey:  true,
	CronKey:    true,
	ProcessKey: true,
}

// ExecutorType is the identifier for executor types that can be found in config
type ExecutorType string

const (
	ShellKey ExecutorType = "shell"
	HttpKey  ExecutorType = "http"
	LogKey   ExecutorType = "log"
)

var executorTypes = map[ExecutorType]bool{
	ShellKey: true,
	HttpKey:  true,
	LogKey:   true,
}

// Cron defines the schedule for a cron source. Every firing is an
// occurrence of Kind, "tick" when unset.
type Cron struct {
	Schedule string `yaml:"schedule"`
	Kind     string `yaml:"kind"`
}

// File defines the path watched by the polling file source. Directories
// report changes of their direct children, or of all descendants when
// Recursive is set.
type File struct {
	Path      string        `yaml:"path"`
	Recursive bool          `yaml:"recursive"`
	Interval  time.Duration `yaml:"interval"`
}

// Notify defines the path watched by the inotify based file source
type Notify struct {
	Path string `yaml:"path"`
}

// Process defines the process watched for open/close transitions.
// Executable corresponds to the name of the process e.g. firefox.exe on Windows
type Process struct {
	Executable string `yaml:"executable"`
}
