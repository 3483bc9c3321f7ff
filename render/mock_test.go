package render

import (
	"errors"
	"fmt"

	"github.com/gpuviz/dtx/shader"
)

// mockDevice records every call so tests can assert on the exact
// command stream the renderer issues.
type mockDevice struct {
	dialect shader.Dialect

	nextProgram ProgramID
	nextTexture TextureID

	// failCompile makes CreateProgram fail until cleared.
	failCompile bool

	programsAlive map[ProgramID]bool
	texturesAlive map[TextureID]*TextureDescriptor

	calls    []string
	uniforms map[string]any
	bindings map[string]TextureID
	draws    []int
	compiles int
}

func newMockDevice() *mockDevice {
	return &mockDevice{
		programsAlive: make(map[ProgramID]bool),
		texturesAlive: make(map[TextureID]*TextureDescriptor),
		uniforms:      make(map[string]any),
		bindings:      make(map[string]TextureID),
	}
}

func (d *mockDevice) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *mockDevice) SourceDialect() shader.Dialect { return d.dialect }

func (d *mockDevice) CreateProgram(label string, src *shader.ProgramSource) (ProgramID, error) {
	d.compiles++
	if d.failCompile {
		return 0, errors.New("mock compile error")
	}
	d.nextProgram++
	d.programsAlive[d.nextProgram] = true
	d.record("CreateProgram(%s,%s)", label, src.Hash)
	return d.nextProgram, nil
}

func (d *mockDevice) DeleteProgram(id ProgramID) {
	delete(d.programsAlive, id)
	d.record("DeleteProgram(%d)", id)
}

func (d *mockDevice) UseProgram(id ProgramID) {
	d.record("UseProgram(%d)", id)
}

func (d *mockDevice) CreateTexture(desc *TextureDescriptor) (TextureID, error) {
	d.nextTexture++
	d.texturesAlive[d.nextTexture] = desc
	d.record("CreateTexture(%s)", desc.Label)
	return d.nextTexture, nil
}

func (d *mockDevice) DeleteTexture(id TextureID) {
	if id == 0 {
		return
	}
	delete(d.texturesAlive, id)
	d.record("DeleteTexture(%d)", id)
}

func (d *mockDevice) BindTexture(unit int, name string, tex TextureID) {
	d.bindings[name] = tex
	d.record("BindTexture(%d,%s,%d)", unit, name, tex)
}

func (d *mockDevice) Uniform1i(name string, v int32) {
	d.uniforms[name] = v
	d.record("Uniform1i(%s,%d)", name, v)
}

func (d *mockDevice) Uniform1f(name string, v float32) {
	d.uniforms[name] = v
	d.record("Uniform1f(%s)", name)
}

func (d *mockDevice) Uniform3f(name string, x, y, z float32) {
	d.uniforms[name] = [3]float32{x, y, z}
	d.record("Uniform3f(%s)", name)
}

func (d *mockDevice) UniformBool(name string, v bool) {
	d.uniforms[name] = v
	d.record("UniformBool(%s,%t)", name, v)
}

func (d *mockDevice) UniformMatrix4fv(name string, m [16]float32) {
	d.uniforms[name] = m
	d.record("UniformMatrix4fv(%s)", name)
}

func (d *mockDevice) DrawTriangles(first, count int) {
	d.draws = append(d.draws, count)
	d.record("DrawTriangles(%d,%d)", first, count)
}
