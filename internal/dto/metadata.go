package dto

// TheoryMetadata is the on-disk form of a theory. It is read from YAML or
// JSON files and from Loam frontmatter, hence the three tag sets.
type TheoryMetadata struct {
	Name        string   `json:"name" yaml:"name" mapstructure:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Objects     []string `json:"objects" yaml:"objects" mapstructure:"objects"`

	// Generators holds either GeneratorMetadata maps or shorthand strings
	// such as "split: Number -> Number, Bool".
	Generators []any              `json:"generators" yaml:"generators" mapstructure:"generators"`
	Equations  []EquationMetadata `json:"equations,omitempty" yaml:"equations,omitempty" mapstructure:"equations"`
}

// IsZero reports whether no theory field is set.
func (m TheoryMetadata) IsZero() bool {
	return m.Name == "" && m.Description == "" && len(m.Objects) == 0 &&
		len(m.Generators) == 0 && len(m.Equations) == 0
}

// GeneratorMetadata declares one generator.
type GeneratorMetadata struct {
	Name string   `json:"name" yaml:"name" mapstructure:"name"`
	Dom  []string `json:"dom" yaml:"dom" mapstructure:"dom"`
	Cod  []string `json:"cod" yaml:"cod" mapstructure:"cod"`
}

// EquationMetadata declares one equation. Both sides are program sources.
type EquationMetadata struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	LHS  string `json:"lhs" yaml:"lhs" mapstructure:"lhs"`
	RHS  string `json:"rhs" yaml:"rhs" mapstructure:"rhs"`
}

// HomomorphismMetadata is the on-disk form of a homomorphism. Source and
// Target are theory references resolved by the loader; generator images are
// program sources over the target.
type HomomorphismMetadata struct {
	Source     string               `json:"source" yaml:"source" mapstructure:"source"`
	Target     string               `json:"target" yaml:"target" mapstructure:"target"`
	Objects    map[string]string    `json:"objects" yaml:"objects" mapstructure:"objects"`
	Generators map[string]string    `json:"generators" yaml:"generators" mapstructure:"generators"`
	Refine     []RefinementMetadata `json:"refine,omitempty" yaml:"refine,omitempty" mapstructure:"refine"`
}

// RefinementMetadata defines an existing target generator by a program.
type RefinementMetadata struct {
	Generator string `json:"generator" yaml:"generator" mapstructure:"generator"`
	Program   string `json:"program" yaml:"program" mapstructure:"program"`
}
