package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/gemscreen/internal/wire"
)

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <run-id>",
		Short: "Show the step journal of a run",
		Long: `Status lists every journaled step transition of a run in order, so
an operator can see where each well stands after a restart.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := wire.RunLedger().ListByRun(context.Background(), args[0])
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Printf("no events recorded for run %s\n", args[0])
				return nil
			}

			for _, ev := range events {
				line := fmt.Sprintf("%s  %-4s  %-22s %s",
					ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.WellLabel, ev.Step, ev.Status)
				switch ev.Status {
				case "failed":
					color.Red("%s  %s", line, ev.Detail)
				case "quit":
					color.Yellow("%s", line)
				case "done":
					color.Green("%s", line)
				default:
					fmt.Println(line)
				}
			}
			return nil
		},
	}
	return cmd
}
