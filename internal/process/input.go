package process

import (
	"fmt"
	"sync/atomic"

	"github.com/vk/planflow/internal/env"
	"github.com/vk/planflow/internal/instruction"
	"github.com/vk/planflow/internal/profile"
)

// Input is what a task sees of a planning request. It is a small value:
// copies and children share the abort flag, the info container, and the
// underlying instruction trees.
type Input struct {
	program     instruction.Instruction
	results     instruction.Instruction
	env         env.Environment
	planRemap   profile.Remapping
	compRemap   profile.Remapping
	aborted     *atomic.Bool
	infos       *InfoContainer
	description string
}

// NewInput creates the root input of a request. results is the tree tasks
// mutate; program is the untouched request for reference.
func NewInput(program, results instruction.Instruction, e env.Environment, planRemap, compositeRemap profile.Remapping) Input {
	return Input{
		program:   program,
		results:   results,
		env:       e,
		planRemap: planRemap,
		compRemap: compositeRemap,
		aborted:   new(atomic.Bool),
		infos:     &InfoContainer{},
	}
}

func (in Input) IsAborted() bool {
	return in.aborted != nil && in.aborted.Load()
}

// Abort sets the abort flag shared by the whole request.
func (in Input) Abort() {
	if in.aborted != nil {
		in.aborted.Store(true)
	}
}

func (in Input) Instruction() instruction.Instruction { return in.program }
func (in Input) Results() instruction.Instruction     { return in.results }
func (in Input) Env() env.Environment                 { return in.env }

func (in Input) PlanProfileRemapping() profile.Remapping      { return in.planRemap }
func (in Input) CompositeProfileRemapping() profile.Remapping { return in.compRemap }

func (in Input) AddTaskInfo(info Info) {
	if in.infos != nil {
		in.infos.Add(info)
	}
}

func (in Input) TaskInfos() []Info {
	if in.infos == nil {
		return nil
	}
	return in.infos.All()
}

// Infos returns the shared container.
func (in Input) Infos() *InfoContainer { return in.infos }

// Len returns the number of children of the results composite, or zero if
// results is not a composite.
func (in Input) Len() int {
	if c, ok := in.results.(*instruction.Composite); ok {
		return c.Len()
	}
	return 0
}

// Child returns the input for the i-th child of the results composite. The
// child's program is the matching child of the program composite when it
// exists.
func (in Input) Child(i int) (Input, error) {
	results, err := instruction.AsComposite(in.results)
	if err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInputShape, err)
	}
	child, err := results.At(i)
	if err != nil {
		return Input{}, fmt.Errorf("%w: %v", ErrInputShape, err)
	}
	out := in
	out.results = child
	out.program = nil
	if program, ok := in.program.(*instruction.Composite); ok {
		if p, err := program.At(i); err == nil {
			out.program = p
		}
	}
	out.description = fmt.Sprintf("%s[%d]", in.Description(), i)
	return out, nil
}

// Description names the part of the request this input covers: the
// description of the results node, or its position in the request.
func (in Input) Description() string {
	if in.results != nil && in.results.Meta().Description != "" {
		return in.results.Meta().Description
	}
	if in.description != "" {
		return in.description
	}
	return "program"
}
