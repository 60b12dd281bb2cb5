// Package cli contains the cobra commands of the gemscreen binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/gemscreen/internal/app"
	"github.com/example/gemscreen/internal/config"
	"github.com/example/gemscreen/internal/core/well"
	"github.com/example/gemscreen/internal/metrics"
	"github.com/example/gemscreen/internal/ports/primary"
	"github.com/example/gemscreen/internal/wire"
)

// RunCmd returns the run command.
func RunCmd() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the screening workflow for every well in the plate map",
		Long: `Run starts a fresh screening run: it creates a timestamped run
directory, builds each well from the plate map and drives the full round
sequence per well. A quit at a gate skips to the next well; persisted
state stays intact for a later rescue.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()

			if metricsAddr != "" {
				go func() {
					if err := metrics.Serve(metricsAddr); err != nil {
						log.Printf("metrics server stopped: %v", err)
					}
				}()
			}

			plate, err := config.LoadPlateMap(cfg.Run.PlateMap)
			if err != nil {
				return err
			}

			runID := app.NewRunID(cfg.Run.Hostname)
			runDir := app.TimestampedRunDir(cfg.Run.SaveDir, cfg.Run.SaveDirName, time.Now())
			color.Cyan("run %s", runID)
			color.Cyan("run directory %s", runDir)

			svc := wire.PipelineService()
			ctx := context.Background()

			var failed int
			for _, label := range plate.Labels() {
				color.Green("== well %s ==", label)
				err := svc.RunWell(ctx, primary.RunWellRequest{
					RunDir:    well.Path(runDir),
					RunID:     runID,
					WellLabel: label,
					Grid:      plate.Wells[label],
				})
				switch {
				case errors.Is(err, app.ErrPipelineQuit):
					color.Yellow("well %s: stopped at a gate, state kept for rescue", label)
				case err != nil:
					failed++
					color.Red("well %s: %v", label, err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d wells failed", failed, len(plate.Labels()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "expose Prometheus metrics on this address (e.g. :9090)")
	return cmd
}
