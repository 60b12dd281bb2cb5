package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/gemscreen/internal/app"
	"github.com/example/gemscreen/internal/core/well"
	"github.com/example/gemscreen/internal/ports/primary"
	"github.com/example/gemscreen/internal/wire"
)

// RescueCmd returns the rescue command.
func RescueCmd() *cobra.Command {
	var assessOnly bool

	cmd := &cobra.Command{
		Use:   "rescue <well-obj.json>",
		Short: "Resume an interrupted well from its persisted state",
		Long: `Rescue inspects a well's persisted object graph and on-disk images,
classifies how far the round sequence actually progressed and continues
from the safe point. Round 1 is never re-imaged once round-2 evidence
exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			objPath := well.Path(args[0])
			svc := wire.PipelineService()
			ctx := context.Background()

			a, err := svc.AssessWell(ctx, primary.AssessWellRequest{ObjPath: objPath})
			if err != nil {
				return err
			}
			color.Cyan("status: %s", a.Status)
			if len(a.MissingRound1) > 0 {
				color.Yellow("missing round 1: %s", strings.Join(a.MissingRound1, ", "))
			}
			if len(a.MissingRound2) > 0 {
				color.Yellow("missing round 2: %s", strings.Join(a.MissingRound2, ", "))
			}
			if len(a.CompletePairs) > 0 {
				color.Green("complete pairs: %s", strings.Join(a.CompletePairs, ", "))
			}
			if assessOnly {
				return nil
			}

			err = svc.ResumeWell(ctx, primary.ResumeWellRequest{ObjPath: objPath})
			if errors.Is(err, app.ErrPipelineQuit) {
				color.Yellow("stopped at a gate, state kept")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&assessOnly, "assess-only", false, "print the rescue classification without resuming")
	return cmd
}
