package store

// Option configures an EntityStore or CollectionStore at construction.
type Option func(*storeConfig)

type storeConfig struct {
	logger Logger
}

func applyOptions(opts []Option) storeConfig {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (cfg storeConfig) log() Logger {
	if cfg.logger != nil {
		return cfg.logger
	}
	return noopLogger{}
}
