package domain

// Config is the normalized service configuration.
type Config struct {
	Store         StoreConfig         `json:"store"`
	HTTP          HTTPConfig          `json:"http"`
	Observability ObservabilityConfig `json:"observability"`
	Log           LogConfig           `json:"log"`
}

type StoreConfig struct {
	Backend         string `json:"backend"`
	Path            string `json:"path"`
	LockPath        string `json:"lockPath"`
	LockRetryMillis int    `json:"lockRetryMillis"`
}

type HTTPConfig struct {
	ListenAddress string `json:"listenAddress"`
	StaticDir     string `json:"staticDir,omitempty"`
	AdminEnabled  bool   `json:"adminEnabled"`
}

type ObservabilityConfig struct {
	ListenAddress  string `json:"listenAddress"`
	MetricsEnabled bool   `json:"metricsEnabled"`
	HealthzEnabled bool   `json:"healthzEnabled"`
}

type LogConfig struct {
	Level string `json:"level"`
}
