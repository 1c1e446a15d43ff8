package config

import "runtime"

const (
	defaultConfigPath = "~/.config/alsdoctor/config.toml"
	projectConfigName = "alsdoctor.toml"
	historyFileName   = "history.db"
	historyLockName   = "history.lock"

	defaultDataDir          = "~/.local/share/alsdoctor"
	defaultLogDir           = "~/.local/share/alsdoctor/logs"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
	maxScanConcurrency      = 64
)

var defaultExtensions = []string{".als"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	opts := defaultDiagnosis()
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Scan: Scan{
			Concurrency: defaultConcurrency(),
			SkipBackups: true,
			Extensions:  append([]string(nil), defaultExtensions...),
		},
		Diagnosis: opts,
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultConcurrency() int {
	return min(max(runtime.NumCPU(), 1), 8)
}
