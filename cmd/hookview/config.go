package main

const (
	defaultBindHost           = "0.0.0.0"
	defaultAPIPort            = 3000
	defaultStoreBucket        = "webhooks"
	defaultMaxConcurrentReads = 8
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Host               string `mapstructure:"host"`
	APIPort            int    `mapstructure:"api-port"`
	APIAddr            string `mapstructure:"api-addr"`
	StoreEndpoint      string `mapstructure:"store-endpoint"`
	StoreRegion        string `mapstructure:"store-region"`
	StoreAccessKey     string `mapstructure:"store-access-key"`
	StoreSecretKey     string `mapstructure:"store-secret-key"`
	StoreBucket        string `mapstructure:"store-bucket"`
	StoreUseSSL        bool   `mapstructure:"store-use-ssl"`
	MaxConcurrentReads int    `mapstructure:"max-concurrent-reads"`
	ConfigPath         string `mapstructure:"-"` // not from config file
}
