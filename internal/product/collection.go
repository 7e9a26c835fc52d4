package product

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Collection holds a set of products, typically the contents of a work
// area. Products keep their insertion order; Names returns a sorted view.
type Collection struct {
	products []*Product
}

// NewCollection creates a collection from the given products.
func NewCollection(products ...*Product) *Collection {
	c := &Collection{}
	for _, p := range products {
		c.Add(p)
	}

	return c
}

// Add appends a product. A product with the same name replaces the
// existing entry.
func (c *Collection) Add(p *Product) {
	if p == nil {
		return
	}

	for i, existing := range c.products {
		if existing.Name == p.Name {
			c.products[i] = p

			return
		}
	}

	c.products = append(c.products, p)
}

// Remove deletes the product with the given name. It reports whether a
// product was removed.
func (c *Collection) Remove(name string) bool {
	for i, p := range c.products {
		if p.Name == name {
			c.products = append(c.products[:i], c.products[i+1:]...)

			return true
		}
	}

	return false
}

// Get returns the product with the given name.
func (c *Collection) Get(name string) (*Product, bool) {
	for _, p := range c.products {
		if p.Name == name {
			return p, true
		}
	}

	return nil, false
}

// Len returns the number of products in the collection.
func (c *Collection) Len() int {
	return len(c.products)
}

// Names returns all product names in sorted order.
func (c *Collection) Names() []string {
	names := make([]string, 0, len(c.products))
	for _, p := range c.products {
		names = append(names, p.Name)
	}

	sort.Strings(names)

	return names
}

// All returns the products in insertion order.
func (c *Collection) All() []*Product {
	all := make([]*Product, len(c.products))
	copy(all, c.products)

	return all
}

// ByType returns the products of the given type.
func (c *Collection) ByType(productType string) []*Product {
	var matched []*Product

	for _, p := range c.products {
		if p.Type == productType {
			matched = append(matched, p)
		}
	}

	return matched
}

// ByCategory returns the products declaring the given category.
func (c *Collection) ByCategory(category string) []*Product {
	var matched []*Product

	for _, p := range c.products {
		for _, cat := range p.Categories {
			if cat == category {
				matched = append(matched, p)

				break
			}
		}
	}

	return matched
}

// Graph builds the dependency graph over the collection's products.
func (c *Collection) Graph() *Graph {
	return NewGraph(c.All())
}

// LoadDir scans a work area for product folders and loads their
// descriptors. Subdirectories without a descriptor are skipped; a folder
// with a malformed descriptor fails the whole scan. Folders are visited in
// sorted order.
func LoadDir(dir string) (*Collection, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading work area: %w", err)
	}

	names := make([]string, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)

	c := &Collection{}

	for _, name := range names {
		p, err := FromDir(filepath.Join(dir, name))
		if err != nil {
			if errors.Is(err, ErrNoDescriptor) {
				continue
			}

			return nil, fmt.Errorf("loading product %s: %w", name, err)
		}

		c.Add(p)
	}

	return c, nil
}
