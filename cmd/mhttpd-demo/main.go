// Command mhttpd-demo wires a GET handler, a streaming POST upload
// handler and an SSI substitution callback to the mhttpd reactor, the way
// bolt/examples/hello wires handlers to a bolt.App.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zorxx/mhttpd/pkg/mhttpd"
)

func main() {
	logger := log.New(os.Stdout, "mhttpd-demo: ", log.LstdFlags)

	cfg := mhttpd.DefaultConfig()
	cfg.ServerPort = 8080
	cfg.ProcessTimeout = 200 * time.Millisecond
	cfg.Logger = logger
	cfg.GetHandlers = []mhttpd.GetHandlerEntry{
		{URI: "/test", Handler: handleTest},
		{URI: "/greet", Handler: handleGreet},
	}
	cfg.DefaultGetHandler = handleNotFound
	cfg.PostHandler = handleUpload
	cfg.SSIHandler = handleSSI

	srv, err := mhttpd.Start(cfg)
	if err != nil {
		logger.Fatalf("start: %v", err)
	}
	defer srv.Shutdown()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	logger.Printf("listening on :%d", cfg.ServerPort)
	for {
		select {
		case <-sigCh:
			logger.Printf("shutting down")
			return
		default:
		}
		if err := srv.Process(); err != nil {
			logger.Fatalf("process: %v", err)
		}
	}
}

func handleTest(conn *mhttpd.Connection, target []byte, params [][]byte, sourceAddr string, cookie interface{}) {
	body := []byte("<html>Hello there!</html>")
	conn.SendResponse(mhttpd.StatusOK, "text/html", len(body), "", body)
}

func handleGreet(conn *mhttpd.Connection, target []byte, params [][]byte, sourceAddr string, cookie interface{}) {
	body := []byte(`<!--#echo var="name" -->, welcome.`)
	conn.SendResponse(mhttpd.StatusOK, "text/html", len(body), "", body)
}

func handleNotFound(conn *mhttpd.Connection, target []byte, params [][]byte, sourceAddr string, cookie interface{}) {
	body := []byte("not found")
	conn.SendResponse(mhttpd.StatusNotFound, "text/plain", len(body), "", body)
}

func handleSSI(conn *mhttpd.Connection, varName string) {
	switch varName {
	case "name":
		conn.SendData(0, []byte("friend"))
	default:
		conn.SendData(0, []byte(""))
	}
}

func handleUpload(conn *mhttpd.Connection, start, finish bool, filename string, data []byte, totalLength int, sourceAddr string, cookie interface{}) {
	switch {
	case start:
		log.Printf("upload start: filename=%q total=%d from=%s", filename, totalLength, sourceAddr)
	case finish:
		log.Printf("upload finished: filename=%q", filename)
		body := []byte("uploaded")
		conn.SendResponse(mhttpd.StatusCreated, "text/plain", len(body), "", body)
	default:
		log.Printf("upload chunk: %d bytes", len(data))
	}
}
