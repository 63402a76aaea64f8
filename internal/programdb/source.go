package programdb

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is the declarative, textual form of a program. Types, where-clauses
// and goals are written in surface syntax and resolved by the lowering pass.
type Source struct {
	Traits   []TraitDecl   `yaml:"traits,omitempty" json:"traits,omitempty"`
	Structs  []StructDecl  `yaml:"structs,omitempty" json:"structs,omitempty"`
	Enums    []EnumDecl    `yaml:"enums,omitempty" json:"enums,omitempty"`
	Impls    []ImplDecl    `yaml:"impls,omitempty" json:"impls,omitempty"`
	Fns      []FnDecl      `yaml:"fns,omitempty" json:"fns,omitempty"`
	Closures []ClosureDecl `yaml:"closures,omitempty" json:"closures,omitempty"`
	Goals    []GoalDecl    `yaml:"goals,omitempty" json:"goals,omitempty"`
}

// TraitDecl declares a trait. Params exclude the implicit Self; lifetime
// parameters are written with a leading quote.
type TraitDecl struct {
	Name       string   `yaml:"name" json:"name"`
	Params     []string `yaml:"params,omitempty" json:"params,omitempty"`
	Where      []string `yaml:"where,omitempty" json:"where,omitempty"`
	AssocTypes []string `yaml:"assoc_types,omitempty" json:"assoc_types,omitempty"`
	Auto       bool     `yaml:"auto,omitempty" json:"auto,omitempty"`
	Marker     bool     `yaml:"marker,omitempty" json:"marker,omitempty"`
	WellKnown  string   `yaml:"well_known,omitempty" json:"well_known,omitempty"`
}

// FieldDecl is a named field.
type FieldDecl struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// StructDecl declares a struct.
type StructDecl struct {
	Name   string      `yaml:"name" json:"name"`
	Params []string    `yaml:"params,omitempty" json:"params,omitempty"`
	Where  []string    `yaml:"where,omitempty" json:"where,omitempty"`
	Fields []FieldDecl `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// VariantDecl is one enum variant.
type VariantDecl struct {
	Name   string      `yaml:"name" json:"name"`
	Fields []FieldDecl `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// EnumDecl declares an enum.
type EnumDecl struct {
	Name     string        `yaml:"name" json:"name"`
	Params   []string      `yaml:"params,omitempty" json:"params,omitempty"`
	Where    []string      `yaml:"where,omitempty" json:"where,omitempty"`
	Variants []VariantDecl `yaml:"variants,omitempty" json:"variants,omitempty"`
}

// AssocDecl binds an associated type inside an impl.
type AssocDecl struct {
	Name string `yaml:"name" json:"name"`
	Type string `yaml:"type" json:"type"`
}

// ImplDecl declares `impl<Params> Trait for For where ...`.
type ImplDecl struct {
	Params   []string    `yaml:"params,omitempty" json:"params,omitempty"`
	Trait    string      `yaml:"trait" json:"trait"`
	For      string      `yaml:"for" json:"for"`
	Where    []string    `yaml:"where,omitempty" json:"where,omitempty"`
	Negative bool        `yaml:"negative,omitempty" json:"negative,omitempty"`
	Assoc    []AssocDecl `yaml:"assoc,omitempty" json:"assoc,omitempty"`
}

// FnDecl declares a fn item.
type FnDecl struct {
	Name   string   `yaml:"name" json:"name"`
	Params []string `yaml:"params,omitempty" json:"params,omitempty"`
	Args   []string `yaml:"args,omitempty" json:"args,omitempty"`
	Return string   `yaml:"return,omitempty" json:"return,omitempty"`
	Where  []string `yaml:"where,omitempty" json:"where,omitempty"`
}

// ClosureDecl declares a closure type. Kind is fn, fn_mut or fn_once.
type ClosureDecl struct {
	Name   string   `yaml:"name" json:"name"`
	Kind   string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Args   []string `yaml:"args,omitempty" json:"args,omitempty"`
	Return string   `yaml:"return,omitempty" json:"return,omitempty"`
	Upvars []string `yaml:"upvars,omitempty" json:"upvars,omitempty"`
}

// GoalDecl is a named query with its environment.
type GoalDecl struct {
	Name string   `yaml:"name" json:"name"`
	Env  []string `yaml:"env,omitempty" json:"env,omitempty"`
	Goal string   `yaml:"goal" json:"goal"`
}

// ParseYAML decodes a program source document.
func ParseYAML(data []byte) (*Source, error) {
	var src Source
	if err := yaml.Unmarshal(data, &src); err != nil {
		return nil, fmt.Errorf("failed to parse program: %w", err)
	}
	return &src, nil
}

// LoadYAML reads a program source file.
func LoadYAML(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read program %s: %w", path, err)
	}
	return ParseYAML(data)
}

// EncodeYAML encodes the source as a YAML document.
func (s *Source) EncodeYAML() ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal program: %w", err)
	}
	return data, nil
}

// Goal looks up a named goal.
func (s *Source) Goal(name string) (GoalDecl, bool) {
	for _, g := range s.Goals {
		if g.Name == name {
			return g, true
		}
	}
	return GoalDecl{}, false
}
