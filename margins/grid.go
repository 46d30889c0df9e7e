package margins

import (
	"sort"

	"github.com/YuminosukeSato/margo/dataset"
	"github.com/YuminosukeSato/margo/pkg/errors"
)

// At is the counterfactual ("at") specification: for each named variable,
// the fixed values to substitute. The engine expands the Cartesian product
// across the named variables, producing one dataset copy per combination.
type At map[string][]float64

// gridPoint is one counterfactual copy of the (possibly subset) base data,
// tagged with the values substituted to produce it. An untagged point
// (nil tag) is the observed sample.
type gridPoint struct {
	tag  map[string]float64
	data *dataset.Dataset
}

// buildGrid validates the specification against the schema and expands the
// base dataset into counterfactual copies. The base is never mutated: each
// copy shares every unsubstituted column. Row subsetting is applied once,
// before expansion, so every grid point covers the same subgroup.
func buildGrid(base *dataset.Dataset, schema []dataset.Descriptor, at At, subset func(i int) bool) ([]gridPoint, error) {
	byName := make(map[string]dataset.Descriptor, len(schema))
	for _, v := range schema {
		byName[v.Name] = v
	}

	// Validate the whole spec up front; no prediction work may start on a
	// malformed specification.
	names := make([]string, 0, len(at))
	for name, values := range at {
		v, ok := byName[name]
		if !ok {
			return nil, errors.NewSpecificationError(name, "variable not in model schema", nil)
		}
		if !base.Has(name) {
			return nil, errors.NewSpecificationError(name, "variable not in dataset", nil)
		}
		if len(values) == 0 {
			return nil, errors.NewSpecificationError(name, "no values given", nil)
		}
		if v.Kind != dataset.Continuous {
			for _, val := range values {
				if !v.HasLevel(val) {
					return nil, errors.NewSpecificationError(name, "value outside declared levels", val)
				}
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	current := base
	if subset != nil {
		sub, err := current.Subset(subset)
		if err != nil {
			return nil, errors.Wrap(err, "applying row subset")
		}
		current = sub
	}

	if len(names) == 0 {
		return []gridPoint{{data: current}}, nil
	}

	points := []gridPoint{{tag: map[string]float64{}, data: current}}
	for _, name := range names {
		expanded := make([]gridPoint, 0, len(points)*len(at[name]))
		for _, p := range points {
			for _, val := range at[name] {
				d, err := p.data.WithConstant(name, val)
				if err != nil {
					return nil, err
				}
				tag := make(map[string]float64, len(p.tag)+1)
				for k, v := range p.tag {
					tag[k] = v
				}
				tag[name] = val
				expanded = append(expanded, gridPoint{tag: tag, data: d})
			}
		}
		points = expanded
	}
	return points, nil
}
