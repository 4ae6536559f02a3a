package server

import (
	"crypto/tls"
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/serisow/codedoc/config"
	"github.com/serisow/codedoc/handlers"
	"github.com/serisow/codedoc/llm_service"
	"github.com/serisow/codedoc/vector_store"
	"github.com/urfave/negroni"
	"golang.org/x/crypto/acme/autocert"
)

func SetupRoutes(cfg config.Config, llm llm_service.LLMService, client vector_store.Client, logger *slog.Logger) *mux.Router {
	r := mux.NewRouter()

	runHandler := handlers.NewRunHandler(cfg, llm, client, logger)
	r.HandleFunc("/runs", runHandler.ExecuteRun).Methods("POST")
	r.HandleFunc("/runs/{id}", runHandler.GetRun).Methods("GET")

	searchHandler := handlers.NewSearchHandler(client, logger)
	r.Handle("/search", searchHandler).Methods("POST")

	return r
}

// ServeProduction serves HTTPS with certificates managed by autocert; port
// 80 only answers ACME challenges and redirects.
func ServeProduction(n *negroni.Negroni, cfg config.Config) {
	autocertManager := autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(cfg.Domains...),
		Cache:      autocert.DirCache(cfg.CertCacheDir),
	}

	go func() {
		srv := &http.Server{
			Addr:         ":80",
			Handler:      autocertManager.HTTPHandler(nil),
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		err := srv.ListenAndServe()
		log.Fatal(err)
	}()

	tlsConfig := &tls.Config{
		GetCertificate:           autocertManager.GetCertificate,
		PreferServerCipherSuites: true,
		CurvePreferences:         []tls.CurveID{tls.X25519, tls.CurveP256},
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPSPort,
		Handler:      n,
		TLSConfig:    tlsConfig,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	err := srv.ListenAndServeTLS("", "")
	log.Fatal(err)
}

// ServeDevelopment serves plain HTTP.
func ServeDevelopment(s *http.Server) {
	log.Fatal(s.ListenAndServe())
}
