package directive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is a rotation request stored in a YAML file.
type Plan struct {
	Page  *PlanPage  `yaml:"page"`
	Range *PlanRange `yaml:"range"`
	Even  *int       `yaml:"even"`
	Odd   *int       `yaml:"odd"`
	All   *int       `yaml:"all"`
	// Batch is a batch command. It cannot be combined with the other keys.
	Batch string `yaml:"batch"`
}

// PlanPage is the single-page entry of a plan.
type PlanPage struct {
	Number int `yaml:"number"`
	Angle  int `yaml:"angle"`
}

// PlanRange is the page range entry of a plan, 1-based and inclusive.
type PlanRange struct {
	First int `yaml:"first"`
	Last  int `yaml:"last"`
}

// LoadPlan reads a plan file.
func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePlan(data)
}

// ParsePlan decodes a YAML plan. Unknown keys are rejected.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty plan", ErrMalformedDirective)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedDirective, err)
	}
	if plan.Batch != "" && plan.hasSwitches() {
		return nil, fmt.Errorf("%w: batch cannot be combined with page, range, even, odd or all", ErrMalformedDirective)
	}
	return &plan, nil
}

// IsBatch reports whether the plan holds a batch command.
func (p *Plan) IsBatch() bool {
	return p.Batch != ""
}

func (p *Plan) hasSwitches() bool {
	return p.Page != nil || p.Range != nil || p.Even != nil || p.Odd != nil || p.All != nil
}

// Request converts the plan's switches into a Request.
func (p *Plan) Request() Request {
	r := Request{Even: p.Even, Odd: p.Odd, All: p.All}
	if p.Page != nil {
		r.Page = &PageAngle{Page: p.Page.Number, Angle: p.Page.Angle}
	}
	if p.Range != nil {
		r.Range = &RawRange{First: p.Range.First, Last: p.Range.Last}
	}
	return r
}
