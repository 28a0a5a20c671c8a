package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"zoom-follow/src/mode"
	"zoom-follow/src/singleinstance"
)

type stressOptions struct {
	clients  int
	rounds   int
	commands []string
	deadline time.Duration
	maxBusy  float64
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	return cmd.Execute()
}

func newRootCmd(opts *stressOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress-delegate",
		Short: "Hammer the resident with concurrent delegated commands",
		Long: "Starts --clients workers that each send --rounds commands to the running\n" +
			"resident, cycling through --commands. Prints per-command outcomes and\n" +
			"round-trip latency, and fails when the busy ratio exceeds --max-busy.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			return runWithOptions(cmd.OutOrStdout(), *opts, singleinstance.NewClient())
		},
	}

	cmd.Flags().IntVar(&opts.clients, "clients", 20, "number of concurrent clients")
	cmd.Flags().IntVar(&opts.rounds, "rounds", 5, "commands sent by each client")
	cmd.Flags().StringSliceVar(&opts.commands, "commands", []string{singleinstance.StatusCommand},
		"comma-separated commands, cycled across sends")
	cmd.Flags().DurationVar(&opts.deadline, "deadline", 5*time.Second, "timeout for one send")
	cmd.Flags().Float64Var(&opts.maxBusy, "max-busy", 1, "fail when more than this fraction of sends were refused as busy")

	return cmd
}

func (o stressOptions) validate() error {
	if o.clients < 1 || o.rounds < 1 {
		return fmt.Errorf("--clients and --rounds must be positive, got %d and %d", o.clients, o.rounds)
	}
	if len(o.commands) == 0 {
		return errors.New("--commands must name at least one command")
	}
	for _, name := range o.commands {
		if name == singleinstance.StatusCommand {
			continue
		}
		if _, err := mode.ParseCommand(name); err != nil {
			return err
		}
	}
	return nil
}

type outcome int

const (
	outcomeOK outcome = iota
	outcomeBusy
	outcomeRejected
	outcomeTimeout
	outcomeAbsent
	outcomeFailed
	numOutcomes
)

var outcomeNames = [numOutcomes]string{"ok", "busy", "rejected", "timeout", "absent", "failed"}

func (o outcome) String() string { return outcomeNames[o] }

// classify maps one Client.Send result onto an outcome. A resident that
// answered ERROR is "rejected" unless the message says it was busy.
func classify(delegated bool, err error) outcome {
	switch {
	case err == nil && delegated:
		return outcomeOK
	case err == nil:
		return outcomeAbsent
	case errors.Is(err, context.DeadlineExceeded) || isTimeout(err):
		return outcomeTimeout
	case strings.Contains(strings.ToLower(err.Error()), "busy"):
		return outcomeBusy
	case delegated:
		return outcomeRejected
	default:
		return outcomeFailed
	}
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

type sample struct {
	command string
	outcome outcome
	latency time.Duration
}

// tally aggregates samples for one command, or for the whole run.
type tally struct {
	outcomes  [numOutcomes]int
	latencies []time.Duration
}

func (t *tally) add(s sample) {
	t.outcomes[s.outcome]++
	if s.outcome == outcomeOK {
		t.latencies = append(t.latencies, s.latency)
	}
}

func (t *tally) total() int {
	n := 0
	for _, c := range t.outcomes {
		n += c
	}
	return n
}

// percentile returns the nearest-rank percentile of successful round trips.
func (t *tally) percentile(p float64) time.Duration {
	if len(t.latencies) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), t.latencies...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	rank := int(p*float64(len(sorted))+0.5) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= len(sorted) {
		rank = len(sorted) - 1
	}
	return sorted[rank]
}

type report struct {
	overall    tally
	perCommand map[string]*tally
	order      []string
	elapsed    time.Duration
}

func summarize(commands []string, samples []sample, elapsed time.Duration) *report {
	r := &report{perCommand: make(map[string]*tally), elapsed: elapsed}
	for _, name := range commands {
		if _, ok := r.perCommand[name]; !ok {
			r.perCommand[name] = &tally{}
			r.order = append(r.order, name)
		}
	}
	for _, s := range samples {
		r.overall.add(s)
		r.perCommand[s.command].add(s)
	}
	return r
}

func (r *report) busyRatio() float64 {
	n := r.overall.total()
	if n == 0 {
		return 0
	}
	return float64(r.overall.outcomes[outcomeBusy]) / float64(n)
}

func (r *report) write(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprint(tw, "command")
	for _, name := range outcomeNames {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw, "\tp50\tp95\tmax")
	row := func(label string, t *tally) {
		fmt.Fprint(tw, label)
		for _, c := range t.outcomes {
			fmt.Fprintf(tw, "\t%d", c)
		}
		fmt.Fprintf(tw, "\t%s\t%s\t%s\n", t.percentile(0.50), t.percentile(0.95), t.percentile(1))
	}
	for _, name := range r.order {
		row(name, r.perCommand[name])
	}
	row("total", &r.overall)
	_ = tw.Flush()
	fmt.Fprintf(w, "sends=%d elapsed=%s busy=%.1f%%\n", r.overall.total(), r.elapsed.Round(time.Millisecond), 100*r.busyRatio())
}

func runWithOptions(w io.Writer, opts stressOptions, client singleinstance.Client) error {
	start := time.Now()
	samples := launch(opts, client)
	r := summarize(opts.commands, samples, time.Since(start))
	r.write(w)

	if r.overall.outcomes[outcomeAbsent] == r.overall.total() {
		return errors.New("no resident instance answered")
	}
	if ratio := r.busyRatio(); ratio > opts.maxBusy {
		return fmt.Errorf("busy ratio %.2f exceeds --max-busy %.2f", ratio, opts.maxBusy)
	}
	return nil
}

// launch runs every client concurrently. Client i starts at command i so the
// resident sees the commands interleaved rather than in lockstep.
func launch(opts stressOptions, client singleinstance.Client) []sample {
	samples := make([]sample, opts.clients*opts.rounds)
	var wg sync.WaitGroup
	for i := 0; i < opts.clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for round := 0; round < opts.rounds; round++ {
				name := opts.commands[(id+round)%len(opts.commands)]
				samples[id*opts.rounds+round] = send(opts.deadline, client, name)
			}
		}(i)
	}
	wg.Wait()
	return samples
}

func send(deadline time.Duration, client singleinstance.Client, name string) sample {
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()
	began := time.Now()
	delegated, _, err := client.Send(ctx, name)
	return sample{command: name, outcome: classify(delegated, err), latency: time.Since(began)}
}
