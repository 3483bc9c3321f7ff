package render

import (
	"errors"
	"fmt"

	"github.com/gpuviz/dtx"
	"github.com/gpuviz/dtx/shader"
)

// Program errors.
var (
	// ErrProgramCompile is wrapped by device compile/link failures.
	ErrProgramCompile = errors.New("render: program compile failed")

	// ErrProgramFailed is returned by draws while the renderer holds a
	// failed program. The failure is permanent for the configuration
	// hash that produced it; a hash change clears it.
	ErrProgramFailed = errors.New("render: program previously failed to build")
)

// programState tracks a program through its lifecycle. A program starts
// unallocated, becomes allocated on first use, drops back to unallocated
// on context loss, and parks in failed on compile errors.
type programState uint8

const (
	programUnallocated programState = iota
	programAllocated
	programFailed
)

// program is one compiled program tagged with the configuration hash it
// was generated from.
type program struct {
	id    ProgramID
	hash  string
	state programState
	err   error
}

// valid reports whether the program can serve draws for the given
// configuration snapshot: it must be allocated and its hash current.
func (p *program) valid(cfg dtx.Config) bool {
	return p.state == programAllocated && p.hash == cfg.Hash()
}

// failedFor reports whether the program is parked on a failure for this
// exact configuration hash.
func (p *program) failedFor(cfg dtx.Config) bool {
	return p.state == programFailed && p.hash == cfg.Hash()
}

// allocate generates source for the snapshot through the cache, builds
// the device program, and adopts it, releasing any prior program first.
func (p *program) allocate(device Device, cache *shader.SourceCache, cfg dtx.Config, label string) error {
	p.release(device)

	src := cache.Get(cfg, device.SourceDialect())
	id, err := device.CreateProgram(label, src)
	if err != nil {
		p.hash = src.Hash
		p.state = programFailed
		p.err = fmt.Errorf("%w: %v", ErrProgramCompile, err)
		dtx.Logger().Warn("program build failed", "label", label, "hash", src.Hash, "err", err)
		return p.err
	}

	p.id = id
	p.hash = src.Hash
	p.state = programAllocated
	p.err = nil
	dtx.Logger().Info("program built", "label", label, "hash", src.Hash, "dialect", src.Dialect.String())
	return nil
}

// release frees the device program, if any, and returns the lifecycle to
// unallocated. Failure state is cleared too: release precedes either
// reallocation or teardown.
func (p *program) release(device Device) {
	if p.state == programAllocated {
		device.DeleteProgram(p.id)
	}
	*p = program{}
}

// forget drops the program without touching the device, for contexts
// that no longer exist. The next draw reallocates.
func (p *program) forget() {
	*p = program{}
}
