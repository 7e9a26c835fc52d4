// Package product models installed products and their dependency
// relationships.
//
// A product is described by a descriptor file in its checkout root:
// description.xml is the canonical form, and an optional description.json
// overlays it with richer build metadata. Collection groups the products
// found in a work area, and Graph derives dependency ordering from the
// parent declarations.
package product

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Descriptor file names looked up in a product folder.
const (
	DescriptionXML  = "description.xml"
	DescriptionJSON = "description.json"
)

// Defaults assumed when a descriptor omits the field.
const (
	DefaultType = "solution"
	DefaultEnv  = "dev"
)

// Static errors for err113 compliance.
var (
	ErrNameRequired      = errors.New("product descriptor is missing a name")
	ErrNameMismatch      = errors.New("product descriptor names do not match")
	ErrNoDescriptor      = errors.New("no product descriptor found")
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")
)

// Product is the parsed form of a product descriptor.
type Product struct {
	Name         string                 `json:"name"                    yaml:"name"`
	Version      string                 `json:"version,omitempty"       yaml:"version,omitempty"`
	Build        string                 `json:"build,omitempty"         yaml:"build,omitempty"`
	Date         string                 `json:"date,omitempty"          yaml:"date,omitempty"`
	Type         string                 `json:"type"                    yaml:"type"`
	Env          string                 `json:"env,omitempty"           yaml:"env,omitempty"`
	Docs         []string               `json:"docs,omitempty"          yaml:"docs,omitempty"`
	Parents      []string               `json:"parents,omitempty"       yaml:"parents,omitempty"`
	Categories   []string               `json:"categories,omitempty"    yaml:"categories,omitempty"`
	License      string                 `json:"license,omitempty"       yaml:"license,omitempty"`
	Display      map[string]interface{} `json:"display,omitempty"       yaml:"display,omitempty"`
	BuildDetails map[string]interface{} `json:"build_details,omitempty" yaml:"build_details,omitempty"`
}

// String returns the short form used in logs and error messages.
func (p *Product) String() string {
	if p.Version == "" {
		return p.Name
	}

	return p.Name + " " + p.Version
}

type xmlNamed struct {
	Name string `xml:"name,attr"`
}

type xmlDescriptor struct {
	XMLName    xml.Name   `xml:"product"`
	Name       string     `xml:"name,attr"`
	Version    string     `xml:"version,attr"`
	Build      string     `xml:"build,attr"`
	Date       string     `xml:"date,attr"`
	Type       string     `xml:"type,attr"`
	Doc        string     `xml:"doc,attr"`
	Parents    []xmlNamed `xml:"parents>parent"`
	Categories []xmlNamed `xml:"categories>category"`
}

// FromXML parses an XML descriptor. The root element must be <product>
// and must carry a name attribute. The doc attribute is a comma-separated
// list.
func FromXML(data []byte) (*Product, error) {
	var d xmlDescriptor

	if err := xml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing XML descriptor: %w", err)
	}

	if d.Name == "" {
		return nil, ErrNameRequired
	}

	p := &Product{
		Name:    d.Name,
		Version: d.Version,
		Build:   d.Build,
		Date:    d.Date,
		Type:    d.Type,
		Docs:    splitList(d.Doc),
	}

	for _, parent := range d.Parents {
		if parent.Name != "" {
			p.Parents = append(p.Parents, parent.Name)
		}
	}

	for _, category := range d.Categories {
		if category.Name != "" {
			p.Categories = append(p.Categories, category.Name)
		}
	}

	p.applyDefaults()

	return p, nil
}

type jsonDescriptor struct {
	Name       string                 `json:"name"`
	Version    string                 `json:"version"`
	Build      json.RawMessage        `json:"build"`
	Date       string                 `json:"date"`
	Type       string                 `json:"type"`
	Env        string                 `json:"env"`
	Doc        string                 `json:"doc"`
	Parents    []string               `json:"parents"`
	Categories []string               `json:"categories"`
	License    string                 `json:"license"`
	Display    map[string]interface{} `json:"display"`
}

// FromJSON parses a JSON descriptor. The build field accepts either a plain
// string or an object whose timestamp becomes the build identifier and whose
// full content is kept as BuildDetails.
func FromJSON(data []byte) (*Product, error) {
	var d jsonDescriptor

	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing JSON descriptor: %w", err)
	}

	if d.Name == "" {
		return nil, ErrNameRequired
	}

	p := &Product{
		Name:       d.Name,
		Version:    d.Version,
		Date:       d.Date,
		Type:       d.Type,
		Env:        d.Env,
		Docs:       splitList(d.Doc),
		Parents:    d.Parents,
		Categories: d.Categories,
		License:    d.License,
		Display:    d.Display,
	}

	if err := p.applyBuild(d.Build); err != nil {
		return nil, err
	}

	p.applyDefaults()

	return p, nil
}

func (p *Product) applyBuild(raw json.RawMessage) error {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var details map[string]interface{}

		if err := json.Unmarshal(raw, &details); err != nil {
			return fmt.Errorf("parsing build details: %w", err)
		}

		p.BuildDetails = details

		if timestamp, ok := details["timestamp"].(string); ok {
			p.Build = timestamp
		}

		return nil
	}

	var build string

	if err := json.Unmarshal(raw, &build); err != nil {
		return fmt.Errorf("parsing build field: %w", err)
	}

	p.Build = build

	return nil
}

func (p *Product) applyDefaults() {
	if p.Type == "" {
		p.Type = DefaultType
	}

	if p.Env == "" {
		p.Env = DefaultEnv
	}
}

// Merge overlays a JSON descriptor on top of an XML descriptor for the same
// product. Overlay values win wherever both are set.
func Merge(base, overlay *Product) (*Product, error) {
	if base.Name != overlay.Name {
		return nil, fmt.Errorf("%w: %q and %q", ErrNameMismatch, base.Name, overlay.Name)
	}

	return &Product{
		Name:         base.Name,
		Version:      firstNonEmpty(overlay.Version, base.Version),
		Build:        firstNonEmpty(overlay.Build, base.Build),
		Date:         firstNonEmpty(overlay.Date, base.Date),
		Type:         firstNonEmpty(overlay.Type, base.Type),
		Env:          firstNonEmpty(overlay.Env, base.Env),
		Docs:         firstNonEmptyList(overlay.Docs, base.Docs),
		Parents:      firstNonEmptyList(overlay.Parents, base.Parents),
		Categories:   firstNonEmptyList(overlay.Categories, base.Categories),
		License:      firstNonEmpty(overlay.License, base.License),
		Display:      overlay.Display,
		BuildDetails: overlay.BuildDetails,
	}, nil
}

// Load reads a single descriptor file, dispatching on the file extension.
func Load(path string) (*Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml":
		return FromXML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FromDir loads the product descriptor from a checkout directory.
// description.xml is the base; a description.json next to it overlays the
// XML values. A directory with neither file returns ErrNoDescriptor.
func FromDir(dir string) (*Product, error) {
	base, err := Load(filepath.Join(dir, DescriptionXML))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", DescriptionXML, err)
	}

	overlay, err := Load(filepath.Join(dir, DescriptionJSON))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", DescriptionJSON, err)
	}

	switch {
	case base == nil && overlay == nil:
		return nil, fmt.Errorf("%w in %s", ErrNoDescriptor, dir)
	case base == nil:
		return overlay, nil
	case overlay == nil:
		return base, nil
	default:
		return Merge(base, overlay)
	}
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var items []string

	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}

	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func firstNonEmptyList(values ...[]string) []string {
	for _, v := range values {
		if len(v) > 0 {
			return v
		}
	}

	return nil
}
