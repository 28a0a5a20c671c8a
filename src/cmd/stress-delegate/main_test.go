package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestNewRootCmdDefaults(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.clients != 20 || opts.rounds != 5 {
		t.Fatalf("Expected clients=20 rounds=5, got %d and %d", opts.clients, opts.rounds)
	}
	if len(opts.commands) != 1 || opts.commands[0] != "status" {
		t.Fatalf("Expected default commands=[status], got %v", opts.commands)
	}
	if opts.deadline != 5*time.Second || opts.maxBusy != 1 {
		t.Fatalf("Expected deadline=5s max-busy=1, got %v and %v", opts.deadline, opts.maxBusy)
	}
}

func TestNewRootCmdCustomFlags(t *testing.T) {
	opts := &stressOptions{}
	cmd := newRootCmd(opts)
	args := []string{"--clients", "3", "--rounds", "2", "--commands", "follow,reset", "--deadline", "7s", "--max-busy", "0.25"}
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.clients != 3 || opts.rounds != 2 {
		t.Fatalf("Expected clients=3 rounds=2, got %d and %d", opts.clients, opts.rounds)
	}
	if strings.Join(opts.commands, ",") != "follow,reset" {
		t.Fatalf("Expected commands follow,reset, got %v", opts.commands)
	}
	if opts.deadline != 7*time.Second || opts.maxBusy != 0.25 {
		t.Fatalf("Expected deadline=7s max-busy=0.25, got %v and %v", opts.deadline, opts.maxBusy)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    stressOptions
		wantErr bool
	}{
		{"status and modes", stressOptions{clients: 1, rounds: 1, commands: []string{"status", "follow", "window"}}, false},
		{"unknown command", stressOptions{clients: 1, rounds: 1, commands: []string{"zoom-in"}}, true},
		{"no commands", stressOptions{clients: 1, rounds: 1}, true},
		{"zero clients", stressOptions{rounds: 1, commands: []string{"status"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.validate(); (err != nil) != tt.wantErr {
				t.Errorf("Expected error=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		delegated bool
		err       error
		want      outcome
	}{
		{true, nil, outcomeOK},
		{false, nil, outcomeAbsent},
		{true, errors.New("busy, please retry"), outcomeBusy},
		{true, errors.New("rect: outside active screen"), outcomeRejected},
		{true, fmt.Errorf("read: %w", timeoutErr{}), outcomeTimeout},
		{false, context.DeadlineExceeded, outcomeTimeout},
		{false, errors.New("connection reset"), outcomeFailed},
	}
	for _, tt := range tests {
		if got := classify(tt.delegated, tt.err); got != tt.want {
			t.Errorf("classify(%v, %v) = %v, expected %v", tt.delegated, tt.err, got, tt.want)
		}
	}
}

func TestPercentile(t *testing.T) {
	var tl tally
	if got := tl.percentile(0.5); got != 0 {
		t.Fatalf("Expected 0 for no samples, got %v", got)
	}
	for _, ms := range []int{40, 10, 30, 20, 50} {
		tl.add(sample{outcome: outcomeOK, latency: time.Duration(ms) * time.Millisecond})
	}
	tl.add(sample{outcome: outcomeBusy, latency: time.Second})

	if got := tl.percentile(0.5); got != 30*time.Millisecond {
		t.Errorf("Expected p50=30ms, got %v", got)
	}
	if got := tl.percentile(1); got != 50*time.Millisecond {
		t.Errorf("Expected max=50ms ignoring busy sends, got %v", got)
	}
	if tl.total() != 6 {
		t.Errorf("Expected 6 sends, got %d", tl.total())
	}
}

// scriptedClient answers per command and records what it was sent.
type scriptedClient struct {
	mu    sync.Mutex
	sent  []string
	reply map[string]error
}

func (c *scriptedClient) Send(ctx context.Context, cmd string) (bool, string, error) {
	c.mu.Lock()
	c.sent = append(c.sent, cmd)
	err := c.reply[cmd]
	c.mu.Unlock()
	if err != nil {
		return true, "", err
	}
	return true, "mode=Idle", nil
}

func TestLaunchCyclesCommands(t *testing.T) {
	client := &scriptedClient{reply: map[string]error{"window": errors.New("busy, please retry")}}
	opts := stressOptions{clients: 3, rounds: 4, commands: []string{"status", "follow", "window"}, deadline: time.Second}

	samples := launch(opts, client)
	if len(samples) != 12 || len(client.sent) != 12 {
		t.Fatalf("Expected 12 sends, got %d samples and %d sent", len(samples), len(client.sent))
	}
	r := summarize(opts.commands, samples, time.Second)
	for _, name := range opts.commands {
		if n := r.perCommand[name].total(); n != 4 {
			t.Errorf("Expected 4 sends of %s, got %d", name, n)
		}
	}
	if got := r.perCommand["window"].outcomes[outcomeBusy]; got != 4 {
		t.Errorf("Expected window sends to be busy, got %d", got)
	}
	if got := r.overall.outcomes[outcomeOK]; got != 8 {
		t.Errorf("Expected 8 ok sends, got %d", got)
	}
}

func TestRunWithOptionsReport(t *testing.T) {
	client := &scriptedClient{reply: map[string]error{"reset": errors.New("busy, please retry")}}
	opts := stressOptions{clients: 2, rounds: 2, commands: []string{"status", "reset"}, deadline: time.Second, maxBusy: 1}

	var out bytes.Buffer
	if err := runWithOptions(&out, opts, client); err != nil {
		t.Fatalf("runWithOptions failed: %v", err)
	}
	for _, want := range []string{"command", "p95", "status", "reset", "total", "sends=4", "busy=50.0%"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out.String())
		}
	}

	opts.maxBusy = 0.25
	if err := runWithOptions(&bytes.Buffer{}, opts, client); err == nil || !strings.Contains(err.Error(), "max-busy") {
		t.Errorf("Expected busy threshold error, got %v", err)
	}
}

type absentClient struct{}

func (absentClient) Send(ctx context.Context, cmd string) (bool, string, error) { return false, "", nil }

func TestRunWithOptionsNoResident(t *testing.T) {
	opts := stressOptions{clients: 2, rounds: 1, commands: []string{"status"}, deadline: time.Second, maxBusy: 1}
	if err := runWithOptions(&bytes.Buffer{}, opts, absentClient{}); err == nil {
		t.Fatal("Expected error when no resident answers")
	}
}
