// Package asm provides the fragment machinery the per-architecture encoders
// plug into. Programs are built from fragments, assembled in two passes so
// labels can be referenced before they are defined.
package asm

import "fmt"

// Context is handed to fragments while they emit.
type Context interface {
	EmitBytes(data []byte)

	// Pos returns the current offset into the program.
	Pos() int

	GetLabel(label Label) (int, bool)
	SetLabel(label Label)
}

// Fragment is one assemblable unit.
type Fragment interface {
	Emit(ctx Context) error
}

// Group assembles its fragments in order.
type Group []Fragment

var _ Fragment = Group{}

func (g Group) Emit(ctx Context) error {
	for _, frag := range g {
		if err := frag.Emit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Label names a position in the program.
type Label string

type labelDef struct {
	label Label
}

// MarkLabel records the current position under the given label.
func MarkLabel(label Label) Fragment {
	return &labelDef{label: label}
}

func (l *labelDef) Emit(ctx Context) error {
	if pos, exists := ctx.GetLabel(l.label); exists && pos != ctx.Pos() {
		return fmt.Errorf("label %q already defined", l.label)
	}
	ctx.SetLabel(l.label)
	return nil
}

type assembler struct {
	code     []byte
	labels   map[Label]int
	resolved bool
}

func (a *assembler) EmitBytes(data []byte) {
	a.code = append(a.code, data...)
}

func (a *assembler) Pos() int { return len(a.code) }

func (a *assembler) GetLabel(label Label) (int, bool) {
	pos, ok := a.labels[label]
	if !ok && !a.resolved {
		// first pass: pretend the label sits here so the fragment can emit
		// a placeholder of the right width
		return len(a.code), true
	}
	return pos, ok
}

func (a *assembler) SetLabel(label Label) {
	a.labels[label] = len(a.code)
}

// Assemble runs two passes over the fragments and returns the flat image.
func Assemble(frags ...Fragment) ([]byte, error) {
	a := &assembler{labels: make(map[Label]int)}
	if err := Group(frags).Emit(a); err != nil {
		return nil, err
	}
	a.code = a.code[:0]
	a.resolved = true
	if err := Group(frags).Emit(a); err != nil {
		return nil, err
	}
	return a.code, nil
}
