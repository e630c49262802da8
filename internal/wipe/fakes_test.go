package wipe

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mrz1836/wipecert/internal/device"
	"github.com/mrz1836/wipecert/internal/testutil"
)

// span is one write: offset and length.
type span struct {
	off int64
	n   int64
}

// memDevice is an in-memory block device that records every write.
type memDevice struct {
	mu   sync.Mutex
	data []byte
	pos  int64

	// passes holds the writes made after each Seek to offset 0.
	passes [][]span
	// nonZero records whether any byte written in a pass was non-zero.
	nonZero []bool

	syncs   int
	flushes int
	closed  bool

	// shortEvery makes every n-th write report half the requested length.
	shortEvery int
	// zeroWriteAt makes the n-th write report 0 bytes and no error.
	zeroWriteAt int
	// failAt makes the n-th write fail.
	failAt int
	writes int

	// block, when set, is waited on inside the first write.
	block   chan struct{}
	entered chan struct{}
}

func newMemDevice(size int) *memDevice {
	return &memDevice{data: make([]byte, size)}
}

func (d *memDevice) Write(p []byte) (int, error) {
	d.mu.Lock()
	d.writes++
	n := d.writes
	block := d.block
	d.mu.Unlock()

	if block != nil && n == 1 {
		close(d.entered)
		<-block
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failAt > 0 && n == d.failAt {
		return 0, testutil.ErrMockIO
	}
	if d.zeroWriteAt > 0 && n == d.zeroWriteAt {
		return 0, nil
	}
	if d.pos+int64(len(p)) > int64(len(d.data)) {
		return 0, errors.New("write past end of device")
	}

	count := len(p)
	if d.shortEvery > 0 && n%d.shortEvery == 0 && count > 1 {
		count /= 2
	}
	copy(d.data[d.pos:], p[:count])

	cur := len(d.passes) - 1
	d.passes[cur] = append(d.passes[cur], span{off: d.pos, n: int64(count)})
	for _, b := range p[:count] {
		if b != 0 {
			d.nonZero[cur] = true
			break
		}
	}
	d.pos += int64(count)
	return count, nil
}

func (d *memDevice) Seek(offset int64, whence int) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch whence {
	case io.SeekStart:
		d.pos = offset
	case io.SeekCurrent:
		d.pos += offset
	case io.SeekEnd:
		d.pos = int64(len(d.data)) + offset
	}
	if whence == io.SeekStart && offset == 0 {
		d.passes = append(d.passes, nil)
		d.nonZero = append(d.nonZero, false)
	}
	return d.pos, nil
}

func (d *memDevice) Flush() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.flushes++
	return nil
}

func (d *memDevice) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.syncs++
	return nil
}

func (d *memDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *memDevice) totalWrites() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, p := range d.passes {
		total += len(p)
	}
	return total
}

// fakePlatform serves a memDevice.
type fakePlatform struct {
	privileged bool
	exists     bool
	dev        *memDevice
	sizeErr    error
	openErr    error

	mu        sync.Mutex
	unmounted []string
	opened    int
}

func newFakePlatform(dev *memDevice) *fakePlatform {
	return &fakePlatform{privileged: true, exists: true, dev: dev}
}

func (p *fakePlatform) Privileged() bool { return p.privileged }

func (p *fakePlatform) Exists(string) bool { return p.exists }

func (p *fakePlatform) UnmountAll(_ context.Context, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unmounted = append(p.unmounted, path)
}

func (p *fakePlatform) Open(string) (device.BlockDevice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened++
	if p.openErr != nil {
		return nil, p.openErr
	}
	return p.dev, nil
}

func (p *fakePlatform) Size(device.BlockDevice) (int64, error) {
	if p.sizeErr != nil {
		return 0, p.sizeErr
	}
	return int64(len(p.dev.data)), nil
}

// fakeFirmware records ATA commands.
type fakeFirmware struct {
	mu       sync.Mutex
	calls    []string
	creds    []string
	setErr   error
	eraseErr error
}

func (f *fakeFirmware) SetSecurityCredential(_ context.Context, path, credential string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "set-pass "+path)
	f.creds = append(f.creds, credential)
	return f.setErr
}

func (f *fakeFirmware) IssueSecureErase(_ context.Context, path, credential string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "erase "+path)
	f.creds = append(f.creds, credential)
	return f.eraseErr
}

// progressEvent is one progress callback invocation.
type progressEvent struct {
	phase   string
	percent int
}

type progressRecorder struct {
	mu     sync.Mutex
	events []progressEvent
}

func (r *progressRecorder) record(phase string, percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, progressEvent{phase: phase, percent: percent})
}

func (r *progressRecorder) snapshot() []progressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]progressEvent(nil), r.events...)
}
