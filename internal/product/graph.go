package product

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCycle indicates that the parent declarations form a dependency cycle.
var ErrCycle = errors.New("dependency cycle detected")

// Graph captures the parent relationships between products. Edges point
// from a product to the parents it depends on.
type Graph struct {
	products     []*Product
	known        map[string]bool
	dependencies map[string][]string
	dependents   map[string][]string
}

// NewGraph builds the dependency graph for the given products. Parents
// that are not themselves part of the graph still show up as dependency
// names but never block ordering.
func NewGraph(products []*Product) *Graph {
	g := &Graph{
		products:     products,
		known:        make(map[string]bool, len(products)),
		dependencies: make(map[string][]string),
		dependents:   make(map[string][]string),
	}

	for _, p := range products {
		g.known[p.Name] = true
	}

	for _, p := range products {
		for _, parent := range p.Parents {
			g.dependencies[p.Name] = append(g.dependencies[p.Name], parent)
			g.dependents[parent] = append(g.dependents[parent], p.Name)
		}
	}

	return g
}

// Len returns the number of products in the graph.
func (g *Graph) Len() int {
	return len(g.products)
}

// Dependencies returns the direct dependencies of a product in
// declaration order.
func (g *Graph) Dependencies(name string) []string {
	return append([]string(nil), g.dependencies[name]...)
}

// Dependents returns the products that directly depend on the given one.
func (g *Graph) Dependents(name string) []string {
	return append([]string(nil), g.dependents[name]...)
}

// TransitiveDependencies returns every product reachable through parent
// links, nearest first.
func (g *Graph) TransitiveDependencies(name string) []string {
	return g.walk(name, g.dependencies)
}

// TransitiveDependents returns every product that directly or indirectly
// depends on the given one.
func (g *Graph) TransitiveDependents(name string) []string {
	return g.walk(name, g.dependents)
}

func (g *Graph) walk(name string, edges map[string][]string) []string {
	visited := map[string]bool{name: true}
	stack := []string{name}

	var result []string

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, next := range edges[current] {
			if visited[next] {
				continue
			}

			visited[next] = true
			result = append(result, next)
			stack = append(stack, next)
		}
	}

	return result
}

// HasCycle reports whether the parent declarations form a cycle.
func (g *Graph) HasCycle() bool {
	return g.FindCycle() != nil
}

// FindCycle returns one dependency cycle as a product path, with the
// repeated product in both the first and last position. It returns nil
// when the graph is acyclic.
func (g *Graph) FindCycle() []string {
	visited := make(map[string]bool, len(g.products))
	onPath := make(map[string]bool)

	var path, cycle []string

	var visit func(name string) bool
	visit = func(name string) bool {
		if onPath[name] {
			start := 0

			for i, step := range path {
				if step == name {
					start = i

					break
				}
			}

			cycle = append(append([]string(nil), path[start:]...), name)

			return true
		}

		if visited[name] {
			return false
		}

		visited[name] = true
		onPath[name] = true
		path = append(path, name)

		for _, dep := range g.dependencies[name] {
			if visit(dep) {
				return true
			}
		}

		path = path[:len(path)-1]
		onPath[name] = false

		return false
	}

	for _, name := range g.sortedNames() {
		if !visited[name] && visit(name) {
			return cycle
		}
	}

	return nil
}

// InstallOrder returns the product names ordered so that every product
// comes after its dependencies. Ties resolve alphabetically. Parents
// missing from the graph are assumed already installed and do not block
// ordering.
func (g *Graph) InstallOrder() ([]string, error) {
	inDegree := make(map[string]int, len(g.products))

	for _, p := range g.products {
		degree := 0

		for _, dep := range g.dependencies[p.Name] {
			if g.known[dep] {
				degree++
			}
		}

		inDegree[p.Name] = degree
	}

	var frontier []string

	for name, degree := range inDegree {
		if degree == 0 {
			frontier = append(frontier, name)
		}
	}

	sort.Strings(frontier)

	order := make([]string, 0, len(g.products))

	for len(frontier) > 0 {
		name := frontier[0]
		frontier = frontier[1:]
		order = append(order, name)

		for _, dependent := range g.dependents[name] {
			inDegree[dependent]--

			if inDegree[dependent] == 0 {
				frontier = insertSorted(frontier, dependent)
			}
		}
	}

	if len(order) != len(g.products) {
		if cycle := g.FindCycle(); cycle != nil {
			return nil, fmt.Errorf("%w: %s", ErrCycle, strings.Join(cycle, " -> "))
		}

		return nil, ErrCycle
	}

	return order, nil
}

// Roots returns the products nothing else depends on, sorted.
func (g *Graph) Roots() []string {
	var roots []string

	for _, p := range g.products {
		if len(g.dependents[p.Name]) == 0 {
			roots = append(roots, p.Name)
		}
	}

	sort.Strings(roots)

	return roots
}

// Leaves returns the products with no dependencies, sorted.
func (g *Graph) Leaves() []string {
	var leaves []string

	for _, p := range g.products {
		if len(g.dependencies[p.Name]) == 0 {
			leaves = append(leaves, p.Name)
		}
	}

	sort.Strings(leaves)

	return leaves
}

// Tree renders the dependency graph with box-drawing connectors, one
// block per root. A dependency already shown in the current block is
// marked (circular) instead of being expanded again.
func (g *Graph) Tree() string {
	roots := g.Roots()
	if len(roots) == 0 {
		roots = g.sortedNames()
	}

	var lines []string

	for _, root := range roots {
		lines = g.renderNode(lines, root, "", "", make(map[string]bool))
	}

	return strings.Join(lines, "\n")
}

// renderNode appends the line for name and recurses into its
// dependencies. linePrefix renders this node's own line; childPrefix is
// the indentation its children continue under.
func (g *Graph) renderNode(lines []string, name, linePrefix, childPrefix string, visited map[string]bool) []string {
	if visited[name] {
		return append(lines, linePrefix+name+" (circular)")
	}

	visited[name] = true
	lines = append(lines, linePrefix+name)

	deps := g.Dependencies(name)
	sort.Strings(deps)

	for i, dep := range deps {
		connector, indent := "├── ", "│   "

		if i == len(deps)-1 {
			connector, indent = "└── ", "    "
		}

		lines = g.renderNode(lines, dep, childPrefix+connector, childPrefix+indent, visited)
	}

	return lines
}

func (g *Graph) sortedNames() []string {
	names := make([]string, 0, len(g.products))
	for _, p := range g.products {
		names = append(names, p.Name)
	}

	sort.Strings(names)

	return names
}

func insertSorted(sorted []string, value string) []string {
	i := sort.SearchStrings(sorted, value)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = value

	return sorted
}
