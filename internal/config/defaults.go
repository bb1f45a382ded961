package config

const (
	defaultConfigPath              = "~/.config/plotfill/config.toml"
	defaultDatabasePath            = "~/.local/share/plotfill/movies.db"
	defaultReferenceDir            = "~/.local/share/plotfill/reference"
	defaultReferenceGlob           = "*.csv"
	defaultLogDir                  = "~/.local/share/plotfill/logs"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"
	defaultFuzzyCandidateThreshold = 0.90
	defaultFuzzyAcceptThreshold    = 0.95
	defaultSampleSize              = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database:      defaultDatabasePath,
			ReferenceDir:  defaultReferenceDir,
			ReferenceGlob: defaultReferenceGlob,
			LogDir:        defaultLogDir,
		},
		Matching: Matching{
			FuzzyEnabled:            true,
			FuzzyCandidateThreshold: defaultFuzzyCandidateThreshold,
			FuzzyAcceptThreshold:    defaultFuzzyAcceptThreshold,
		},
		Backfill: Backfill{
			SampleSize:    defaultSampleSize,
			RecordHistory: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
