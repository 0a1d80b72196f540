package logger

// Log levels accepted by Config.Level.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// DefaultService is the service label attached to every log entry when
// Config.Service is empty.
const DefaultService = "arcadedb-driver"

// Config controls the behaviour of the zap-backed logger.
type Config struct {
	// Level selects the minimum level that is emitted.
	// One of "debug", "info", "warning", "error". Defaults to "info".
	Level string `yaml:"level" envconfig:"ARCADE_LOG_LEVEL"`

	// Service is added as a constant field to every entry so that logs from
	// multiple services sharing one sink can be told apart.
	Service string `yaml:"service" envconfig:"ARCADE_LOG_SERVICE"`
}
