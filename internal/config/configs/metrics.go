package configs

// Metrics controls the Prometheus endpoint. When enabled the HTTP server
// exposes Go runtime and process metrics on /metrics.
type Metrics struct {
	Enabled bool `env:"ENABLED" envDefault:"true"`
}
