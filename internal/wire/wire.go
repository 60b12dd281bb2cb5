// Package wire provides dependency injection for the gemscreen
// application. It creates singleton services with lazy initialization.
package wire

import (
	"log"
	"os"
	"sync"

	"github.com/example/gemscreen/internal/adapters/instrument"
	"github.com/example/gemscreen/internal/adapters/processing"
	"github.com/example/gemscreen/internal/adapters/prompt"
	"github.com/example/gemscreen/internal/adapters/selector"
	"github.com/example/gemscreen/internal/adapters/sqlite"
	"github.com/example/gemscreen/internal/adapters/wellstore"
	"github.com/example/gemscreen/internal/app"
	"github.com/example/gemscreen/internal/config"
	"github.com/example/gemscreen/internal/db"
	"github.com/example/gemscreen/internal/ports/primary"
	"github.com/example/gemscreen/internal/ports/secondary"
)

var (
	cfg             *config.Config
	pipelineService primary.PipelineService
	runLedger       secondary.RunLedger
	once            sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// PipelineService returns the singleton PipelineService instance.
func PipelineService() primary.PipelineService {
	once.Do(initServices)
	return pipelineService
}

// RunLedger returns the singleton RunLedger instance.
func RunLedger() secondary.RunLedger {
	once.Do(initServices)
	return runLedger
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	var err error
	cfg, err = config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	database, err := db.Open(cfg.Ledger.Path)
	if err != nil {
		log.Fatalf("failed to initialize run ledger database: %v", err)
	}
	runLedger = sqlite.NewLedgerRepository(database)

	client := processing.New(cfg.Server.BaseURL, cfg.Server.RequestTimeout, os.Stdout)
	store := wellstore.New()

	var picker secondary.CellSelector = selector.PassThrough{}
	if cfg.Stim.SelectorCommand != "" {
		picker = selector.New(cfg.Stim.SelectorCommand)
	}

	// TODO: swap in the micromanager-backed instrument adapter once the
	// hardware bridge lands; the simulator keeps dry runs working.
	scope := instrument.NewSimulator(2048, 2048)

	gates := prompt.New(os.Stdin, os.Stdout)

	pipelineService = app.NewPipelineService(cfg, store, runLedger, client, scope, picker, gates, os.Stdout)
}
