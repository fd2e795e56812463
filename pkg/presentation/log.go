package presentation

import (
	"fmt"

	"github.com/aretw0/causal/pkg/domain"
)

// Op is the kind of a structural change recorded in the mutation log.
type Op string

const (
	OpAddObject    Op = "add_object"
	OpAddGenerator Op = "add_generator"
	OpAddEquation  Op = "add_equation"
	OpRefine       Op = "refine"
	OpClone        Op = "clone"
)

// Mutation is one entry of a presentation's audit trail.
type Mutation struct {
	Seq     int    `json:"seq"`
	Op      Op     `json:"op"`
	Subject string `json:"subject"`
}

func (m Mutation) String() string {
	return fmt.Sprintf("#%d %s %s", m.Seq, m.Op, m.Subject)
}

// Log returns the mutation log, oldest first. A clone inherits the log of
// its base followed by an OpClone entry.
func (p *Presentation) Log() []Mutation {
	return append([]Mutation(nil), p.log...)
}

func (p *Presentation) record(op Op, subject string) {
	p.log = append(p.log, Mutation{Seq: len(p.log) + 1, Op: op, Subject: subject})
}

// AddDefinition records rhs as a definition of the existing generator gen,
// asserting the equation gen == rhs. It is the primitive behind refinement.
func (p *Presentation) AddDefinition(gen string, rhs domain.Term) error {
	g, err := p.Generator(gen)
	if err != nil {
		return err
	}
	if err := p.Resolve(rhs); err != nil {
		return err
	}
	eq, err := domain.NewEquation("def:"+gen, domain.Ref(g), rhs)
	if err != nil {
		return err
	}
	p.equations = append(p.equations, eq)
	p.record(OpRefine, gen)
	return nil
}
