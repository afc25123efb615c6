package config

// Constructors used by tests to bypass flag parsing

func NewFormatsWithPath(path string) *Formats {
	return &Formats{path: path}
}

func NewLoggerWith(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryWith(backend string) *Repository {
	return &Repository{backend: backend}
}

func NewLLMWith(provider string) *LLM {
	return &LLM{provider: provider}
}
