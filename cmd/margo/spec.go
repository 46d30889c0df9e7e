package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/glm"
	"github.com/YuminosukeSato/margo/margins"
)

// modelSpec is the YAML description of a fitted model.
type modelSpec struct {
	Family       string         `yaml:"family"`
	Scale        string         `yaml:"scale"`
	ResidualDF   float64        `yaml:"residual_df"`
	Terms        []termSpec     `yaml:"terms"`
	Coefficients []float64      `yaml:"coefficients"`
	Covariance   [][]float64    `yaml:"covariance"`
	Schema       []variableSpec `yaml:"schema"`
	At           margins.At     `yaml:"at"`
}

// termSpec encodes one design term; exactly one field may be set.
type termSpec struct {
	Intercept bool           `yaml:"intercept"`
	Var       string         `yaml:"var"`
	Square    string         `yaml:"square"`
	Interact  []string       `yaml:"interact"`
	Indicator *indicatorSpec `yaml:"indicator"`
}

type indicatorSpec struct {
	Var   string  `yaml:"var"`
	Level float64 `yaml:"level"`
}

type variableSpec struct {
	Name   string    `yaml:"name"`
	Kind   string    `yaml:"kind"`
	Levels []float64 `yaml:"levels"`
	Step   float64   `yaml:"step"`
}

func loadModelSpec(path string) (*modelSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec modelSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &spec, nil
}

func (s *modelSpec) build() (*glm.Model, error) {
	var family glm.Family
	switch s.Family {
	case "gaussian", "":
		family = glm.Gaussian
	case "binomial":
		family = glm.Binomial
	case "poisson":
		family = glm.Poisson
	default:
		return nil, fmt.Errorf("unknown family %q", s.Family)
	}

	terms := make([]glm.Term, 0, len(s.Terms))
	for i, t := range s.Terms {
		switch {
		case t.Intercept:
			terms = append(terms, glm.Intercept())
		case t.Var != "":
			terms = append(terms, glm.Var(t.Var))
		case t.Square != "":
			terms = append(terms, glm.Square(t.Square))
		case len(t.Interact) == 2:
			terms = append(terms, glm.Interact(t.Interact[0], t.Interact[1]))
		case t.Indicator != nil:
			terms = append(terms, glm.Indicator(t.Indicator.Var, t.Indicator.Level))
		default:
			return nil, fmt.Errorf("term %d: expected intercept, var, square, interact (2 variables) or indicator", i)
		}
	}

	var cov *mat.SymDense
	if len(s.Covariance) > 0 {
		n := len(s.Covariance)
		cov = mat.NewSymDense(n, nil)
		for i, row := range s.Covariance {
			if len(row) != n {
				return nil, fmt.Errorf("covariance row %d: expected %d entries, got %d", i, n, len(row))
			}
			for j := i; j < n; j++ {
				cov.SetSym(i, j, row[j])
			}
		}
	}

	schema := make([]dataset.Descriptor, len(s.Schema))
	for i, v := range s.Schema {
		var kind dataset.Kind
		switch v.Kind {
		case "continuous", "":
			kind = dataset.Continuous
		case "binary":
			kind = dataset.Binary
		case "factor":
			kind = dataset.Factor
		default:
			return nil, fmt.Errorf("variable %s: unknown kind %q", v.Name, v.Kind)
		}
		schema[i] = dataset.Descriptor{Name: v.Name, Kind: kind, Levels: v.Levels, Step: v.Step}
	}

	var opts []glm.Option
	switch s.Scale {
	case "", "response":
	case "link":
		opts = append(opts, glm.WithScale(glm.Link))
	default:
		return nil, fmt.Errorf("unknown scale %q", s.Scale)
	}
	if s.ResidualDF > 0 {
		opts = append(opts, glm.WithResidualDF(s.ResidualDF))
	}

	return glm.NewModel(family, terms, s.Coefficients, cov, schema, opts...)
}

// loadCSV reads a dataset with a header row; every cell must be numeric
// (categorical variables are level codes).
func loadCSV(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s: need a header row and at least one observation", path)
	}

	names := records[0]
	cols := make(map[string][]float64, len(names))
	for _, name := range names {
		cols[name] = make([]float64, 0, len(records)-1)
	}
	for rowIdx, rec := range records[1:] {
		if len(rec) != len(names) {
			return nil, fmt.Errorf("%s row %d: expected %d fields, got %d", path, rowIdx+2, len(names), len(rec))
		}
		for colIdx, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d column %s: %w", path, rowIdx+2, names[colIdx], err)
			}
			cols[names[colIdx]] = append(cols[names[colIdx]], v)
		}
	}
	return dataset.New(names, cols)
}
