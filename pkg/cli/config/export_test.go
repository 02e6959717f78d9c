package config

// SetPath sets the policy file path for testing
func (a *AppConfig) SetPath(path string) {
	a.path = path
}

// SetBackend sets backend flags for testing
func (r *Repository) SetBackend(backend, boltPath string) {
	r.backend = backend
	r.boltPath = boltPath
}

// SetLogger sets logger flags for testing
func (l *Logger) SetLogger(level, format, output string) {
	l.level = level
	l.format = format
	l.output = output
}

var ParseDate = parseDate
