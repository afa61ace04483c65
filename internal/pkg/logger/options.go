package logger

// Option overrides a loaded configuration, typically from command line flags
type Option func(*Config)

// Verbose switches to debug level with caller and stacktrace information
func Verbose() Option {
	return func(c *Config) {
		c.Level = "debug"
		c.EnableCaller = true
		c.EnableStacktrace = true
	}
}

// WithLevel forces the log level
func WithLevel(level string) Option {
	return func(c *Config) {
		c.Level = level
	}
}

// ToFile mirrors console output into a rotated log file.
// Rotation limits keep their configured values unless unset.
func ToFile(filename string) Option {
	return func(c *Config) {
		c.Output = "both"
		c.File.Filename = filename

		defaults := DefaultConfig().File
		if c.File.MaxSize <= 0 {
			c.File.MaxSize = defaults.MaxSize
		}
		if c.File.MaxAge <= 0 {
			c.File.MaxAge = defaults.MaxAge
		}
	}
}

// Apply returns a copy of the configuration with the options applied.
// The receiver is left untouched.
func (c *Config) Apply(opts ...Option) *Config {
	cfg := *c
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &cfg
}
