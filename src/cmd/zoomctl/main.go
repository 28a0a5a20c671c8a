package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"zoom-follow/src/config"
	"zoom-follow/src/mode"
	"zoom-follow/src/singleinstance"
)

var errNoResident = errors.New("no running zoom-follow instance found")

type ctlOptions struct {
	timeout time.Duration
	verbose bool
	envFile string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &ctlOptions{}
	cmd := newRootCmd(opts, singleinstance.NewClient(), os.Stdout)
	return cmd.Execute()
}

func newRootCmd(opts *ctlOptions, client singleinstance.Client, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "zoomctl",
		Short:         "Send commands to a running zoom-follow instance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.verbose {
				log.SetOutput(os.Stderr)
			} else {
				log.SetOutput(io.Discard)
			}
			// Load .env so SINGLEINSTANCE_PORT_* match the resident.
			_, _ = config.LoadWithOptions(config.LoadOptions{EnvPathOverride: opts.envFile, DisplayIndexOverride: -1})
		},
	}
	cmd.SetOut(out)

	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 2*time.Second, "How long to wait for the resident")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to .env file (highest precedence)")

	for _, c := range mode.Commands {
		cmd.AddCommand(newSendCmd(c.String(), c.Description(), opts, client))
	}
	cmd.AddCommand(newSendCmd(singleinstance.StatusCommand, "Print the resident's mode and crop", opts, client))

	return cmd
}

func newSendCmd(name, short string, opts *ctlOptions, client singleinstance.Client) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return send(cmd.Context(), client, name, opts.timeout, cmd.OutOrStdout())
		},
	}
}

func send(parent context.Context, client singleinstance.Client, name string, timeout time.Duration, out io.Writer) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	delegated, reply, err := client.Send(ctx, name)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if !delegated {
		return errNoResident
	}
	log.Printf("Delegated %q to resident", name)
	_, err = fmt.Fprintln(out, reply)
	return err
}
