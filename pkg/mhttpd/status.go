package mhttpd

// Named status codes exposed for caller convenience. The server itself
// accepts an arbitrary uint16 status in SendResponse; these constants
// just cover the common cases callers are likely to return.
const (
	StatusContinue           uint16 = 100
	StatusOK                 uint16 = 200
	StatusCreated            uint16 = 201
	StatusAccepted           uint16 = 202
	StatusFound              uint16 = 302
	StatusTemporaryRedirect  uint16 = 307
	StatusPermanentRedirect  uint16 = 308
	StatusBadRequest         uint16 = 400
	StatusUnauthorized       uint16 = 401
	StatusForbidden          uint16 = 403
	StatusNotFound           uint16 = 404
)

// Bounded sizes.
const (
	MaxURIParams           = 20
	MaxHTTPHeaderOptions   = 20
	MaxQueuedConnections   = 10
	MaxSourceAddressLength = 30
	SSITagMaxLength        = 128

	// MaxSendLength is the upper bound on a single SendData call; larger
	// bodies must be split by the caller across several SendData calls.
	MaxSendLength = 8 << 20 // 8 MiB
)

const serverName = "microhttpd"

// ssiPrefix and ssiTerminator delimit an SSI directive inside a response
// body: `<!--#echo var="NAME" -->`.
var (
	ssiPrefix     = []byte(`<!--#echo var="`)
	ssiTerminator = []byte(`" -->`)
)
