// Command skyfence runs the threat evaluation engine: a polling loop over the
// shared track store that scores live tracks, persists score changes past the
// dead-band, and engages tracks whose score crosses the escalation threshold.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/skyfence-labs/skyfence/internal/api"
	"github.com/skyfence-labs/skyfence/internal/config"
	"github.com/skyfence-labs/skyfence/internal/engine"
	"github.com/skyfence-labs/skyfence/internal/store"
	"github.com/skyfence-labs/skyfence/internal/version"
)

var (
	dbPath     = flag.String("db", "tracks.db", "Path to the track database")
	configPath = flag.String("config", "", "Path to a tuning config JSON file (defaults apply when empty)")
	listen     = flag.String("listen", ":8080", "Listen address for the operator API")
	devMode    = flag.Bool("dev", false, "Run in dev mode (mounts /debug admin routes)")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	// Fatal setup path: a bad config or unreachable store exits non-zero
	// instead of retrying forever without operator visibility.
	cfg := config.EmptyEngineConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadEngineConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	db, err := store.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to track database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate track database: %v", err)
	}

	trackStore := store.NewSQLiteStore(db)
	eval := engine.NewEvaluator(trackStore, engine.ParamsFromTuning(cfg))

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Evaluation loop. Recoverable cycle errors are logged inside the loop;
	// only a signal stops it.
	eval.Start()
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		eval.Stop()
		log.Print("evaluator loop terminated")
	}()

	// Operator API + debug routes.
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		if *devMode {
			db.AttachAdminRoutes(mux)
		}

		apiMux := api.NewServer(trackStore, eval).ServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiMux))

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("failed to start server: %v", err)
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
		log.Printf("HTTP server routine stopped")
	}()

	log.Printf("skyfence %s running: db=%s interval=%s", version.String(), *dbPath, cfg.GetPollInterval())
	wg.Wait()
	log.Printf("Graceful shutdown complete")
}
