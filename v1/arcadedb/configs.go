package arcadedb

import "time"

// DefaultAPIBase is the root of ArcadeDB's HTTP API. It can be overridden
// via Config.APIBase for servers mounted behind a path-rewriting proxy.
const DefaultAPIBase = "/api/v1"

// Endpoint suffixes under the API root.
const (
	serverEndpoint    = "/server"
	existsEndpoint    = "/exists"
	databasesEndpoint = "/databases"
	queryEndpoint     = "/query"
	commandEndpoint   = "/command"
	beginEndpoint     = "/begin"
	commitEndpoint    = "/commit"
	rollbackEndpoint  = "/rollback"
)

// SessionHeader is the HTTP header carrying the transaction session id. The
// server returns it on begin and expects it on every statement that should
// run inside that transaction.
const SessionHeader = "arcadedb-session-id"

// Defaults applied when the corresponding Config fields are zero.
const (
	DefaultPort        = "2480"
	DefaultProtocol    = "http"
	DefaultContentType = "application/json"

	// DefaultRetryMax bounds every retry loop in the driver: the
	// transaction retry in ExecuteTransaction and the per-batch retry in
	// SafeDeleteAll.
	DefaultRetryMax     = 3
	DefaultRetryDelay   = 1 * time.Second
	DefaultRetryBackoff = 2.0

	// DefaultBatchSize is the record/row count per network round trip used
	// by the bulk operations.
	DefaultBatchSize = 1000

	// maxDeleteRounds is the safety ceiling on bounded-delete loops. The
	// server reports affected rows per round; a buggy report of a constant
	// non-zero count would otherwise loop forever.
	maxDeleteRounds = 100000
)

// Languages accepted by the query and command endpoints.
var availableLanguages = map[string]struct{}{
	"sql":       {},
	"sqlscript": {},
	"graphql":   {},
	"cypher":    {},
	"gremlin":   {},
	"mongo":     {},
}

// Serializer modes accepted by the server. An empty serializer leaves the
// choice to the server.
const (
	SerializerGraph  = "graph"
	SerializerRecord = "record"
)

// Connection holds the parameters needed to reach one ArcadeDB server and
// select the database all data operations run against.
type Connection struct {
	// Host of the ArcadeDB server. Required.
	Host string `yaml:"host" envconfig:"ARCADE_HOST"`

	// Port of the HTTP API. Defaults to "2480".
	Port string `yaml:"port" envconfig:"ARCADE_PORT"`

	// Protocol is "http" or "https". Defaults to "http".
	Protocol string `yaml:"protocol" envconfig:"ARCADE_PROTOCOL"`

	// Username and Password are sent as HTTP basic auth on every request.
	Username string `yaml:"username" envconfig:"ARCADE_USERNAME"`
	Password string `yaml:"password" envconfig:"ARCADE_PASSWORD"`

	// Database is the database name data operations address. Server-level
	// operations (create/drop/list) do not require it.
	Database string `yaml:"database" envconfig:"ARCADE_DATABASE"`
}

// Retry bounds the driver's retry loops. No loop in this package is
// unbounded; these values cap attempt counts and pace the waits between
// attempts.
type Retry struct {
	// MaxAttempts is the number of retries after the first failure.
	// Defaults to 3.
	MaxAttempts int `yaml:"max_attempts" envconfig:"ARCADE_RETRY_MAX"`

	// Delay is the initial wait before the first retry. Defaults to 1s.
	Delay time.Duration `yaml:"delay" envconfig:"ARCADE_RETRY_DELAY"`

	// Backoff is the multiplier applied to the wait after each attempt.
	// Defaults to 2.
	Backoff float64 `yaml:"backoff" envconfig:"ARCADE_RETRY_BACKOFF"`
}

// Config is the full configuration for an ArcadeDB client.
type Config struct {
	Connection Connection `yaml:"connection"`
	Retry      Retry      `yaml:"retry"`

	// APIBase overrides the HTTP API root. Defaults to "/api/v1".
	APIBase string `yaml:"api_base" envconfig:"ARCADE_API_ENDPOINT"`

	// ContentType sent on every request body. Defaults to
	// "application/json".
	ContentType string `yaml:"content_type" envconfig:"ARCADE_CONTENT_TYPE"`
}

// withDefaults returns a copy of the config with zero fields replaced by the
// package defaults.
func (c Config) withDefaults() Config {
	if c.Connection.Port == "" {
		c.Connection.Port = DefaultPort
	}
	if c.Connection.Protocol == "" {
		c.Connection.Protocol = DefaultProtocol
	}
	if c.APIBase == "" {
		c.APIBase = DefaultAPIBase
	}
	if c.ContentType == "" {
		c.ContentType = DefaultContentType
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultRetryMax
	}
	if c.Retry.Delay == 0 {
		c.Retry.Delay = DefaultRetryDelay
	}
	if c.Retry.Backoff == 0 {
		c.Retry.Backoff = DefaultRetryBackoff
	}
	return c
}
