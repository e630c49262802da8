package device

import (
	"context"
	"strings"
	"sync"
)

// call records one Run invocation.
type call struct {
	name string
	args []string
}

func (c call) String() string {
	return c.name + " " + strings.Join(c.args, " ")
}

// fakeRunner returns scripted responses keyed by command line prefix.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []call
	responses map[string]fakeResponse
}

type fakeResponse struct {
	stdout string
	stderr string
	err    error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]fakeResponse)}
}

func (f *fakeRunner) on(cmdline string, resp fakeResponse) *fakeRunner {
	f.responses[cmdline] = resp
	return f
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := call{name: name, args: append([]string(nil), args...)}
	f.calls = append(f.calls, c)

	line := c.String()
	best := ""
	for prefix := range f.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return nil, nil, nil
	}
	resp := f.responses[best]
	return []byte(resp.stdout), []byte(resp.stderr), resp.err
}

func (f *fakeRunner) commandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.String()
	}
	return out
}
