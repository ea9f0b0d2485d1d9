package domain

const (
	DefaultStoreBackend               = StoreBackendFile
	DefaultStorePath                  = "data/tools.json"
	DefaultBoltStorePath              = "data/tools.db"
	DefaultLockSuffix                 = ".lock"
	DefaultLockRetryMillis            = 50
	DefaultHTTPListenAddress          = "127.0.0.1:8000"
	DefaultHTTPAdminEnabled           = true
	DefaultObservabilityListenAddress = "127.0.0.1:9090"
	DefaultMetricsEnabled             = true
	DefaultHealthzEnabled             = true
	DefaultLogLevel                   = "info"
	DefaultConfigPath                 = "toolcatalog.yaml"
)

const (
	StoreBackendFile = "file"
	StoreBackendBolt = "bolt"
)
