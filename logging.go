package store

// TransferLogEvent describes a store mutation for logging.
type TransferLogEvent struct {
	Op     string
	Status StatusCode
	Err    error
}

// Logger records store transfer events.
type Logger interface {
	LogTransfer(TransferLogEvent)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(TransferLogEvent)

// LogTransfer implements Logger.
func (f LoggerFunc) LogTransfer(event TransferLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopLogger struct{}

func (noopLogger) LogTransfer(TransferLogEvent) {}

// WithLogger attaches a logger to a store.
func WithLogger(logger Logger) Option {
	return func(cfg *storeConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}
