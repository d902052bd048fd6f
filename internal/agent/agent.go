package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/mwantia/fabric/pkg/container"
	config "github.com/mwantia/olog/internal/config/server"
	"github.com/mwantia/olog/pkg/blob"
	"github.com/mwantia/olog/pkg/db/store"
	"github.com/mwantia/olog/pkg/log"
)

type OlogAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService
	svc *Services
}

func NewAgent(cfg *config.BaseServerConfig) *OlogAgent {
	return &OlogAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("olog", cfg.Log),
	}
}

func (oa *OlogAgent) setupServices(ctx context.Context) error {
	svc, err := OpenServices(ctx, oa.cfg, oa.log)
	if err != nil {
		return fmt.Errorf("failed to open services: %w", err)
	}
	oa.svc = svc

	errs := container.Errors{}

	oa.log.Debug("Registering 'LoggerService'...")
	errs.Add(container.Register[log.LoggerServiceImpl](oa.sc,
		container.With[log.LoggerService](),
		container.WithInstance(oa.log)))

	oa.log.Debug("Registering 'DocumentStore'...")
	errs.Add(container.Register[store.SQLiteStore](oa.sc,
		container.With[store.DocumentStore](),
		container.WithInstance(svc.Store)))

	oa.log.Debug("Registering 'BlobStore'...")
	switch blobs := svc.Blobs.(type) {
	case *blob.FilesystemStore:
		errs.Add(container.Register[blob.FilesystemStore](oa.sc,
			container.With[blob.Store](),
			container.WithInstance(blobs)))
	case *blob.S3Store:
		errs.Add(container.Register[blob.S3Store](oa.sc,
			container.With[blob.Store](),
			container.WithInstance(blobs)))
	}

	return errs.Errors()
}

func (oa *OlogAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	oa.mutex.Lock()

	if err := oa.setupServices(ctx); err != nil {
		oa.mutex.Unlock()
		if oa.svc != nil {
			oa.svc.Close()
		}
		return err
	}

	oa.mutex.Unlock()
	oa.log.Info("Serving logbook index '%s'", oa.cfg.Metadata.SQLite.Path)
	<-ctx.Done()

	timeout, err := time.ParseDuration(oa.cfg.ShutdownTimeout)
	if err != nil {
		// Set default of 60 seconds if error
		timeout = 60 * time.Second
	}

	shutdown, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := oa.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	oa.wait.Wait()

	oa.mutex.Lock()
	defer oa.mutex.Unlock()
	if err := oa.svc.Close(); err != nil {
		return fmt.Errorf("failed to close document index: %w", err)
	}
	return nil
}
