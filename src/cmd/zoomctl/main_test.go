package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeClient struct {
	delegated bool
	reply     string
	err       error
	sent      []string
}

func (f *fakeClient) Send(ctx context.Context, cmd string) (bool, string, error) {
	f.sent = append(f.sent, cmd)
	return f.delegated, f.reply, f.err
}

func execute(t *testing.T, client *fakeClient, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&ctlOptions{}, client, &out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubcommandsDelegate(t *testing.T) {
	for _, name := range []string{"follow", "rect", "window", "reset", "status"} {
		t.Run(name, func(t *testing.T) {
			client := &fakeClient{delegated: true, reply: "mode=Idle current=0,0,0,0"}
			out, err := execute(t, client, name)
			if err != nil {
				t.Fatalf("Execute failed: %v", err)
			}
			if len(client.sent) != 1 || client.sent[0] != name {
				t.Fatalf("Expected %q to be sent, got %v", name, client.sent)
			}
			if strings.TrimSpace(out) != client.reply {
				t.Errorf("Expected reply to be printed, got %q", out)
			}
		})
	}
}

func TestNoResident(t *testing.T) {
	_, err := execute(t, &fakeClient{}, "follow")
	if !errors.Is(err, errNoResident) {
		t.Fatalf("Expected errNoResident, got %v", err)
	}
}

func TestResidentError(t *testing.T) {
	_, err := execute(t, &fakeClient{delegated: true, err: errors.New("point outside active screen")}, "rect")
	if err == nil || !strings.Contains(err.Error(), "rect: point outside active screen") {
		t.Fatalf("Expected wrapped resident error, got %v", err)
	}
}

func TestRejectsExtraArgs(t *testing.T) {
	client := &fakeClient{delegated: true}
	if _, err := execute(t, client, "reset", "now"); err == nil {
		t.Fatal("Expected error for extra arguments")
	}
	if len(client.sent) != 0 {
		t.Fatalf("Expected nothing sent, got %v", client.sent)
	}
}

func TestTimeoutFlag(t *testing.T) {
	opts := &ctlOptions{}
	cmd := newRootCmd(opts, &fakeClient{}, &bytes.Buffer{})
	if err := cmd.PersistentFlags().Parse([]string{"--timeout", "7s"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if opts.timeout != 7*time.Second {
		t.Fatalf("Expected timeout=7s, got %v", opts.timeout)
	}
}
