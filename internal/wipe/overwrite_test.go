package wipe

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/wipecert/internal/domain"
	"github.com/mrz1836/wipecert/internal/testutil"
)

const testChunk = 4096

func newTestEngine(p Platform, fw *fakeFirmware, opts ...EngineOption) *Engine {
	if fw == nil {
		fw = &fakeFirmware{}
	}
	cfg := Config{ChunkSize: testChunk, ProgressInterval: 4 * testChunk}
	return NewEngine(p, fw, cfg, zerolog.Nop(), opts...)
}

// assertContiguous checks that one pass wrote [0,size) exactly once, in order.
func assertContiguous(t *testing.T, spans []span, size int64) {
	t.Helper()
	var next int64
	for i, s := range spans {
		require.Equal(t, next, s.off, "span %d starts at the wrong offset", i)
		require.Positive(t, s.n)
		next += s.n
	}
	assert.Equal(t, size, next, "pass must cover the device exactly")
}

func TestOverwrite_ExactByteAccounting(t *testing.T) {
	const size = 3*testChunk + 123
	dev := newMemDevice(size)
	e := newTestEngine(newFakePlatform(dev), nil)

	outcome := e.Overwrite(context.Background(), "/dev/sdz", 3, nil)

	require.True(t, outcome.Success, outcome.Detail)
	assert.Equal(t, "Overwrite successful.", outcome.Detail)
	assert.Equal(t, int64(size), outcome.BytesPerPass)
	assert.Equal(t, 3, outcome.PassesCompleted)

	require.Len(t, dev.passes, 3)
	for _, spans := range dev.passes {
		assertContiguous(t, spans, size)
		assert.Equal(t, int64(123), spans[len(spans)-1].n, "final chunk is clipped")
	}
	assert.GreaterOrEqual(t, dev.syncs, 3, "every pass ends with a sync")
	assert.GreaterOrEqual(t, dev.flushes, 3)
	assert.True(t, dev.closed)
}

func TestOverwrite_RandomThenZero(t *testing.T) {
	t.Run("single pass leaves random data", func(t *testing.T) {
		dev := newMemDevice(5 * testChunk)
		outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 1, nil)
		require.True(t, outcome.Success)

		assert.True(t, dev.nonZero[0], "pass 0 writes random bytes")
		assert.NotEqual(t, make([]byte, len(dev.data)), dev.data)
	})

	t.Run("later passes write zeros", func(t *testing.T) {
		dev := newMemDevice(5*testChunk + 7)
		outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 3, nil)
		require.True(t, outcome.Success)

		assert.Equal(t, []bool{true, false, false}, dev.nonZero)
		assert.Equal(t, make([]byte, len(dev.data)), dev.data)
	})
}

func TestOverwrite_ShortWrites(t *testing.T) {
	t.Run("recovered with sync", func(t *testing.T) {
		const size = 6*testChunk + 50
		dev := newMemDevice(size)
		dev.shortEvery = 3

		outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 2, nil)

		require.True(t, outcome.Success, outcome.Detail)
		for _, spans := range dev.passes {
			assertContiguous(t, spans, size)
		}
		assert.Greater(t, dev.syncs, 2, "short writes force extra syncs")
	})

	t.Run("zero-length write is an io error", func(t *testing.T) {
		dev := newMemDevice(4 * testChunk)
		dev.zeroWriteAt = 2

		outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 1, nil)

		assert.False(t, outcome.Success)
		assert.Equal(t, domain.KindIO, outcome.Kind)
		assert.Contains(t, outcome.Detail, "short write")
	})
}

func TestOverwrite_WriteFailure(t *testing.T) {
	dev := newMemDevice(8 * testChunk)
	dev.failAt = 10

	outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 3, nil)

	assert.False(t, outcome.Success)
	assert.Equal(t, domain.KindIO, outcome.Kind)
	assert.Contains(t, outcome.Detail, "input/output error")
	assert.Equal(t, 1, outcome.PassesCompleted)
}

func TestOverwrite_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(p *fakePlatform)
		passes int
		kind   domain.ErrorKind
	}{
		{"not privileged", func(p *fakePlatform) { p.privileged = false }, 1, domain.KindPrivilege},
		{"missing path", func(p *fakePlatform) { p.exists = false }, 1, domain.KindResourceNotFound},
		{"zero passes", func(*fakePlatform) {}, 0, domain.KindInvalidArgument},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dev := newMemDevice(testChunk)
			p := newFakePlatform(dev)
			tc.setup(p)

			outcome := newTestEngine(p, nil).Overwrite(context.Background(), "/dev/sdz", tc.passes, nil)

			assert.False(t, outcome.Success)
			assert.Equal(t, tc.kind, outcome.Kind)
			assert.Zero(t, dev.totalWrites(), "no bytes may be touched")
			assert.Zero(t, p.opened)
			assert.Empty(t, p.unmounted)
		})
	}
}

func TestOverwrite_DeviceSetupFailures(t *testing.T) {
	t.Run("size unknown", func(t *testing.T) {
		dev := newMemDevice(testChunk)
		p := newFakePlatform(dev)
		p.sizeErr = errors.New("seek to end: invalid argument")

		outcome := newTestEngine(p, nil).Overwrite(context.Background(), "/dev/sdz", 1, nil)
		assert.Equal(t, domain.KindSizeDetermination, outcome.Kind)
		assert.Contains(t, outcome.Detail, "Unable to determine device size")
		assert.Zero(t, dev.totalWrites())
	})

	t.Run("permission denied on open", func(t *testing.T) {
		p := newFakePlatform(newMemDevice(testChunk))
		p.openErr = &fs.PathError{Op: "open", Path: "/dev/sdz", Err: fs.ErrPermission}

		outcome := newTestEngine(p, nil).Overwrite(context.Background(), "/dev/sdz", 1, nil)
		assert.Equal(t, domain.KindPrivilege, outcome.Kind)
	})

	t.Run("device busy on open", func(t *testing.T) {
		p := newFakePlatform(newMemDevice(testChunk))
		p.openErr = testutil.ErrMockDeviceBusy

		outcome := newTestEngine(p, nil).Overwrite(context.Background(), "/dev/sdz", 1, nil)
		assert.Equal(t, domain.KindIO, outcome.Kind)
	})

	t.Run("random source failure", func(t *testing.T) {
		dev := newMemDevice(testChunk)
		e := newTestEngine(newFakePlatform(dev), nil, WithRandomSource(failingReader{}))

		outcome := e.Overwrite(context.Background(), "/dev/sdz", 1, nil)
		assert.Equal(t, domain.KindIO, outcome.Kind)
		assert.Zero(t, dev.totalWrites())
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestOverwrite_Progress(t *testing.T) {
	const size = 20 * testChunk
	dev := newMemDevice(size)
	rec := &progressRecorder{}

	outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 2, rec.record)
	require.True(t, outcome.Success)

	events := rec.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, "Attempting to unmount /dev/sdz...", events[0].phase)
	assert.Equal(t, progressEvent{phase: "Overwrite complete.", percent: 100}, events[len(events)-1])

	byPass := map[string][]int{}
	for _, ev := range events {
		assert.GreaterOrEqual(t, ev.percent, 0)
		assert.LessOrEqual(t, ev.percent, 100)
		if ev.phase == "Pass 1/2" || ev.phase == "Pass 2/2" {
			byPass[ev.phase] = append(byPass[ev.phase], ev.percent)
		}
	}

	for phase, pcts := range byPass {
		for i := 1; i < len(pcts); i++ {
			assert.GreaterOrEqual(t, pcts[i], pcts[i-1], "%s progress must not go backwards", phase)
		}
		assert.Equal(t, 100, pcts[len(pcts)-1])
		// 20 chunks at one report per 4 chunks: 4 intermediate reports plus the end.
		assert.Len(t, pcts, 5, phase)
	}
	assert.Contains(t, events, progressEvent{phase: "Starting Pass 2/2...", percent: 0})
}

func TestOverwrite_PanickingCallback(t *testing.T) {
	dev := newMemDevice(10 * testChunk)
	calls := 0
	progress := func(string, int) {
		calls++
		panic("render failed")
	}

	outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(context.Background(), "/dev/sdz", 1, progress)

	require.True(t, outcome.Success, outcome.Detail)
	assert.Greater(t, calls, 1, "callback keeps being invoked after a panic")
}

func TestOverwrite_Canceled(t *testing.T) {
	const size = 40 * testChunk
	dev := newMemDevice(size)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	progress := func(phase string, percent int) {
		if phase == "Pass 1/1" && percent > 0 {
			cancel()
		}
	}

	outcome := newTestEngine(newFakePlatform(dev), nil).Overwrite(ctx, "/dev/sdz", 1, progress)

	assert.False(t, outcome.Success)
	assert.Equal(t, domain.KindCanceled, outcome.Kind)
	assert.Contains(t, outcome.Detail, "Pass 1/1")
	assert.Zero(t, outcome.PassesCompleted)

	var written int64
	for _, s := range dev.passes[0] {
		written += s.n
	}
	assert.Less(t, written, int64(size))
	assert.Positive(t, dev.syncs, "partial data is synced before stopping")
}

func TestOverwrite_SingleWriterPerPath(t *testing.T) {
	dev := newMemDevice(4 * testChunk)
	dev.block = make(chan struct{})
	dev.entered = make(chan struct{})
	e := newTestEngine(newFakePlatform(dev), nil)

	first := e.Start(context.Background(), "/dev/sdz", domain.MethodOverwrite, 1, nil)

	select {
	case <-dev.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first wipe never reached the device")
	}

	assert.True(t, e.InProgress("/dev/sdz"))
	second := e.Overwrite(context.Background(), "/dev/../dev/sdz", 1, nil)
	assert.Equal(t, domain.KindWipeInProgress, second.Kind)

	purge := e.HardwareErase(context.Background(), "/dev/sdz", nil)
	assert.Equal(t, domain.KindWipeInProgress, purge.Kind)

	close(dev.block)
	outcome := <-first
	require.True(t, outcome.Success, outcome.Detail)

	_, open := <-first
	assert.False(t, open, "outcome channel is closed after delivery")
	assert.False(t, e.InProgress("/dev/sdz"))
}

func TestWipe_Dispatch(t *testing.T) {
	e := newTestEngine(newFakePlatform(newMemDevice(testChunk)), nil)

	outcome := e.Wipe(context.Background(), "/dev/sdz", domain.WipeMethod("shred"), 1, nil)
	assert.Equal(t, domain.KindUnsupportedMethod, outcome.Kind)

	outcome = e.Wipe(context.Background(), "/dev/sdz", domain.MethodOverwrite, 1, nil)
	assert.True(t, outcome.Success)
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(newFakePlatform(newMemDevice(1)), &fakeFirmware{}, Config{}, zerolog.Nop())

	assert.Equal(t, DefaultConfig(), e.cfg)
	assert.Len(t, newCredential(), 32)
	assert.NotEqual(t, newCredential(), newCredential())
}
