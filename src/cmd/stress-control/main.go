package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"screen-translate-overlay/src/singleinstance"
)

type stressOptions struct {
	n        int
	command  string
	deadline time.Duration
}

type tally struct {
	ok, missed, failed int32
}

func main() {
	if err := newRootCmd(&stressOptions{}).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stress-control",
		Short:         "Send many concurrent control commands to a running overlay",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := singleinstance.ParseCommand(opts.command)
			if err != nil {
				return err
			}
			start := time.Now()
			t := stress(singleinstance.NewClient(), c, opts.n, opts.deadline)
			report(cmd.OutOrStdout(), opts.n, t, time.Since(start))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.n, "n", 50, "number of concurrent clients")
	cmd.Flags().StringVar(&opts.command, "command", string(singleinstance.CommandStatus), "command to send (toggle|pause|copy|status|quit)")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "per-client timeout")

	return cmd
}

func stress(client singleinstance.Client, cmd singleinstance.Command, n int, deadline time.Duration) tally {
	var wg sync.WaitGroup
	var t tally
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), deadline)
			defer cancel()
			delivered, _, err := client.Send(ctx, cmd)
			switch {
			case err != nil:
				atomic.AddInt32(&t.failed, 1)
			case delivered:
				atomic.AddInt32(&t.ok, 1)
			default:
				atomic.AddInt32(&t.missed, 1)
			}
		}()
	}
	wg.Wait()
	return t
}

func report(w io.Writer, n int, t tally, elapsed time.Duration) {
	fmt.Fprintf(w, "launched=%d ok=%d missed=%d err=%d elapsed=%s\n", n, t.ok, t.missed, t.failed, elapsed)
}
