package mhttpd

import (
	"log"
	"time"

	"github.com/zorxx/mhttpd/pkg/mhttpd/metrics"
)

// GetHandler is invoked once per matching registration for a GET request.
// There is no separate param-count argument — len(params) covers it.
type GetHandler func(conn *Connection, target []byte, params [][]byte, sourceAddr string, cookie interface{})

// GetHandlerEntry registers a GetHandler against a URI prefix. Every
// registered entry whose URI is a byte-prefix of the request target is
// invoked, in registration order — registrations are expected to use
// disjoint prefixes; if they don't, every matching handler runs.
type GetHandlerEntry struct {
	URI     string
	Handler GetHandler
	Cookie  interface{}
}

// PostHandler streams a single multipart/form-data upload. It is called
// once with start=true before any data, zero or more times with a data
// chunk, and exactly once with finish=true.
type PostHandler func(conn *Connection, start, finish bool, filename string, data []byte, totalLength int, sourceAddr string, cookie interface{})

// SSIHandler substitutes a `<!--#echo var="NAME" -->` directive found in a
// SendData body. The handler writes the substitution directly to conn.
type SSIHandler func(conn *Connection, varName string)

// Config configures a Server at Start. All options are evaluated once.
type Config struct {
	// ServerPort is the TCP port to bind.
	ServerPort uint16

	// ProcessTimeout bounds a single reactor tick's readiness wait. Zero
	// means block indefinitely.
	ProcessTimeout time.Duration

	// RxBufferSize is the per-connection receive buffer size in bytes.
	// Must be > 0.
	RxBufferSize int

	// GetHandlers is the ordered list of prefix-matched GET handlers.
	GetHandlers []GetHandlerEntry

	// DefaultGetHandler is invoked iff no GetHandlers entry matched.
	DefaultGetHandler GetHandler
	DefaultGetCookie  interface{}

	// PostHandler is the single streaming upload callback.
	PostHandler PostHandler
	PostCookie  interface{}

	// SSIHandler substitutes echo directives in SendData bodies.
	SSIHandler SSIHandler

	// Logger receives diagnostics for every per-connection error kind,
	// whether or not it results in an eviction. Defaults to log.Default().
	Logger *log.Logger

	// Metrics records reactor-level counters. Defaults to
	// metrics.NewRecorder(), which is a no-op recorder unless the module
	// is built with the "prometheus" tag, in which case it records real
	// Prometheus counters.
	Metrics metrics.Recorder
}

// DefaultConfig returns a Config with the ambient fields (Logger, Metrics)
// populated and RxBufferSize set to a reasonable default. Callers still
// need to set ServerPort and the handler fields.
func DefaultConfig() Config {
	return Config{
		ProcessTimeout: 0,
		RxBufferSize:   8192,
		Logger:         log.Default(),
		Metrics:        metrics.NewRecorder(),
	}
}

func (c *Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

func (c *Config) metrics() metrics.Recorder {
	if c.Metrics != nil {
		return c.Metrics
	}
	return metrics.NewRecorder()
}
