package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/comalice/tickfsm/internal/extensibility"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the machine, reading event names from stdin",
	Long: `Starts the tick loop and prints every transition. Each line read from
stdin is sent as an event ("name" or "name payload"); the command ends on EOF, --duration or a signal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		duration, _ := cmd.Flags().GetDuration("duration")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if duration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, duration)
			defer cancel()
		}

		if err := a.runtime.Start(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "started in %v\n", a.runtime.CurrentStates())

		stdin := extensibility.NewLineEventSource(ctx, cmd.InOrStdin())
		if err := a.runtime.Attach(ctx, stdin); err != nil {
			return err
		}
		stdinDone := stdin.Done()
		var readErr error

	loop:
		for {
			select {
			case rec := <-a.publisher.Records():
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-10s %s -> %s\n",
					rec.Timestamp.Format("15:04:05.000"), rec.Event.String(), rec.From, rec.To)
			case <-stdinDone:
				if readErr = stdin.Err(); readErr != nil || duration == 0 {
					break loop
				}
				stdinDone = nil
			case <-ctx.Done():
				break loop
			}
		}

		stop()
		if err := a.runtime.Stop(); err != nil {
			return err
		}
		if readErr != nil {
			return fmt.Errorf("reading events: %w", readErr)
		}
		n := a.machine.Context().Int("transitions")
		fmt.Fprintf(cmd.OutOrStdout(), "stopped in %v after %d counted transitions\n", a.runtime.CurrentStates(), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until EOF or signal)")
}
