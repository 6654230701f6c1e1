// Command mockapi runs the in-memory mock portal API on a local port.
// Point the CLI at it with PORTAL_API_URL=http://localhost:8085.
package main

import (
	"flag"
	"net/http"
	"os"

	"github.com/portal-hub/student-portal/internal/interface/mockapi"
	"github.com/portal-hub/student-portal/pkg/logger"
)

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	flag.Parse()

	log := logger.New(os.Stderr, logger.LevelDebug)
	server := mockapi.New(log)

	log.Info("mock portal API listening", logger.String("addr", *addr))
	if err := http.ListenAndServe(*addr, server.Router()); err != nil {
		log.Error("server stopped", logger.Err(err))
		os.Exit(1)
	}
}
