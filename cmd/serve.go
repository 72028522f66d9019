package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/database/postgres"
	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/logging"
	"github.com/kozaktomas/face-sentry/internal/report"
	"github.com/kozaktomas/face-sentry/internal/session"
	"github.com/kozaktomas/face-sentry/internal/web"
)

// archivePruneFactor keeps the database archive bounded at a multiple
// of the in-memory history capacity.
const archivePruneFactor = 10

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the presence engine and its HTTP API",
	Long: `Start the Face Sentry server.
Stored identities are reloaded by re-running feature extraction over
their reference images, the detection history is warmed from existing
report files, and the HTTP API starts accepting frames.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command, log *logrus.Logger) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		if parsed, err := strconv.Atoi(envPort); err == nil {
			port = parsed
		} else {
			log.WithField("WEB_PORT", envPort).Warnf("invalid port, using %d", port)
		}
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

// warmHistory seeds the engine's ledger from persisted report files so
// the history survives restarts.
func warmHistory(engine *session.Engine, dataRoot string) error {
	events, err := report.LoadHistory(dataRoot)
	if err != nil {
		return err
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
	engine.WarmStart(events)
	return nil
}

// warmFromArchive seeds the ledger from the event archive, which holds
// richer records than the report files. Returns the number of events
// loaded; the caller falls back to report files when it is zero.
func warmFromArchive(ctx context.Context, engine *session.Engine, events *postgres.EventRepository, limit int) (int, error) {
	recent, err := events.Recent(ctx, limit, "")
	if err != nil || len(recent) == 0 {
		return 0, err
	}
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}
	engine.WarmStart(recent)
	return len(recent), nil
}

// reconcileMirror brings the archived identity rows in line with the
// loaded gallery: current identities are upserted and rows for
// identities that disappeared while the archive was detached are
// dropped. Register and delete keep the mirror in sync from then on.
func reconcileMirror(ctx context.Context, repo *postgres.IdentityRepository, engine *session.Engine) error {
	current := engine.Identities()
	keep := make(map[string]struct{}, len(current))
	for _, id := range current {
		if err := repo.Save(ctx, id.Name, id.Vector); err != nil {
			return fmt.Errorf("mirroring identity %q: %w", id.Name, err)
		}
		keep[id.Name] = struct{}{}
	}

	archived, err := repo.List(ctx)
	if err != nil {
		return err
	}
	for _, row := range archived {
		if _, ok := keep[row.Name]; ok {
			continue
		}
		if err := repo.Delete(ctx, row.Name); err != nil {
			return fmt.Errorf("dropping stale mirror row %q: %w", row.Name, err)
		}
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New()
	ctx := context.Background()

	detector := detect.NewClient(cfg.Detector.URL)
	classifier, err := emotion.FromConfig(cfg.Emotion)
	if err != nil {
		return err
	}
	log.WithField("provider", classifier.Name()).Info("emotion classifier ready")

	var pool *postgres.Pool
	var identityRepo *postgres.IdentityRepository
	if cfg.Database.URL != "" {
		pool, err = postgres.Initialize(&cfg.Database)
		if err != nil {
			return fmt.Errorf("initializing archive database: %w", err)
		}
		defer pool.Close()
		identityRepo = postgres.NewIdentityRepository(pool)
	}

	g, err := loadGallery(ctx, cfg, detector, identityRepo, log)
	if err != nil {
		return fmt.Errorf("loading identity gallery: %w", err)
	}
	log.WithField("identities", g.Len()).Info("identity gallery loaded")

	sink := report.NewFileSink(cfg.Data.Path, log)
	engine := session.NewEngine(cfg, g, detector, classifier, sink, log)

	if pool != nil {
		events := postgres.NewEventRepository(pool)
		engine.SetArchiver(events)
		engine.SetMirror(identityRepo)

		if err := events.Prune(ctx, cfg.History.Capacity*archivePruneFactor); err != nil {
			return fmt.Errorf("pruning event archive: %w", err)
		}
		if err := reconcileMirror(ctx, identityRepo, engine); err != nil {
			return fmt.Errorf("reconciling identity mirror: %w", err)
		}

		loaded, err := warmFromArchive(ctx, engine, events, cfg.History.Capacity)
		if err != nil {
			log.WithError(err).Warn("could not warm detection history from the archive")
		}
		if loaded == 0 {
			if err := warmHistory(engine, cfg.Data.Path); err != nil {
				log.WithError(err).Warn("could not warm detection history from reports")
			}
		}
		log.Info("PostgreSQL event archive enabled")
	} else if err := warmHistory(engine, cfg.Data.Path); err != nil {
		log.WithError(err).Warn("could not warm detection history from reports")
	}

	port, host := resolveServeHostPort(cmd, log)
	server := web.NewServer(engine, port, host, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutdown signal received")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("error during shutdown")
		}
	}()

	return server.Start()
}
