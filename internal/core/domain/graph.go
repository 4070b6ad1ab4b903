// Package domain contains the core domain models for the project dependency
// graph and the content-addressed cache.
package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents the dependency graph of all declared projects.
// It owns the derived effective input set per project.
type Graph struct {
	projects        map[InternedString]Project
	order           []InternedString
	effectiveInputs map[InternedString][]string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		projects: make(map[InternedString]Project),
	}
}

// AddProject adds a project to the graph.
// It returns an error if a project with the same name already exists.
func (g *Graph) AddProject(p *Project) error {
	if _, exists := g.projects[p.Name]; exists {
		return zerr.With(ErrProjectAlreadyExists, "project", p.Name.String())
	}
	g.projects[p.Name] = *p
	return nil
}

// Project returns the project with the given name.
func (g *Graph) Project(name string) (Project, error) {
	p, ok := g.projects[NewInternedString(name)]
	if !ok {
		return Project{}, zerr.With(ErrProjectNotFound, "project", name)
	}
	return p, nil
}

// Projects returns all project names in topological order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Projects() []string {
	names := make([]string, len(g.order))
	for i, n := range g.order {
		names[i] = n.String()
	}
	return names
}

// Len returns the number of projects in the graph.
func (g *Graph) Len() int {
	return len(g.projects)
}

// Validate checks the dependency relation for cycles and dangling references
// using a depth-first traversal with a recursion-stack check. On success it
// populates the topological order used by Projects.
func (g *Graph) Validate() error {
	g.order = make([]InternedString, 0, len(g.projects))
	visited := make(map[InternedString]int) // 0: unvisited, 1: visiting, 2: visited
	var path []InternedString

	var visit func(u InternedString) error
	visit = func(u InternedString) error {
		visited[u] = 1
		path = append(path, u)

		project, exists := g.projects[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u.String())
		}

		for _, dep := range project.DependsOn {
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.order = append(g.order, u)
		return nil
	}

	// Visit names in sorted order so disconnected components produce a
	// stable topological order.
	names := make([]InternedString, 0, len(g.projects))
	for name := range g.projects {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b InternedString) int {
		return strings.Compare(a.String(), b.String())
	})

	for _, name := range names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

// EffectiveInputs returns the project's own input patterns unioned with the
// effective inputs of every transitive dependency, deduplicated and sorted.
// Patterns are kept as patterns; expansion against the filesystem is the
// resolver's job. Results are memoized for the lifetime of the graph, which
// is safe because the graph is immutable after construction.
//
// Only inputs propagate across dependency edges. Environment variable lists
// and outputs do not.
func (g *Graph) EffectiveInputs(name string) ([]string, error) {
	key := NewInternedString(name)
	project, ok := g.projects[key]
	if !ok {
		return nil, zerr.With(ErrProjectNotFound, "project", name)
	}

	if g.effectiveInputs == nil {
		g.effectiveInputs = make(map[InternedString][]string)
	}
	if cached, ok := g.effectiveInputs[key]; ok {
		return cached, nil
	}

	seen := make(map[string]bool)
	var patterns []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			patterns = append(patterns, s)
		}
	}

	for _, p := range project.Inputs {
		add(p.String())
	}
	for _, dep := range project.DependsOn {
		depInputs, err := g.EffectiveInputs(dep.String())
		if err != nil {
			return nil, err
		}
		for _, s := range depInputs {
			add(s)
		}
	}

	slices.Sort(patterns)
	g.effectiveInputs[key] = patterns
	return patterns, nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []InternedString, dep InternedString) error {
	cyclePath := ""
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += path[i].String() + " -> "
	}
	cyclePath += dep.String()
	return zerr.With(ErrCycleDetected, "cycle", cyclePath)
}
