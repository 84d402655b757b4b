package handler

import (
	"net/http"

	"github.com/wadjakorntonsri/go-linkbio/pkg/app"
	"github.com/wadjakorntonsri/go-linkbio/pkg/config"
	"github.com/wadjakorntonsri/go-linkbio/pkg/logger"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	_ = logger.Init(cfg.LogLevel, false)

	// Note: On Vercel, db.sqlite is ephemeral unless using a remote SQL/Turso URL in DATABASE_URL
	a, err := app.New(cfg, logger.Get())
	if err != nil {
		panic(err)
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
