// Package mapping resolves the arbitrary column names of external CSV
// exports to the canonical order-row fields the transformer expects.
//
// Warehouse systems do not agree on header spelling ("Order ID",
// "order_id", "ordernumber", ...), so resolution goes through a profile: a
// YAML document mapping each canonical field to its known header aliases.
// A built-in profile covers the shipper exports seen so far; deployments
// can point MAPPING_PROFILE_PATH at their own.
package mapping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"orderbridge/internal/csvio"
)

//go:embed default_profile.yaml
var defaultProfile []byte

// Profile maps canonical field names to header aliases.
type Profile struct {
	Fields map[string][]string `yaml:"fields"`

	// index maps normalized alias -> canonical name, built once.
	index map[string]string
}

// Default returns the built-in profile.
func Default() *Profile {
	p, err := parse(defaultProfile)
	if err != nil {
		// The embedded profile is validated by tests; a parse failure
		// here is a build defect.
		panic(fmt.Sprintf("embedded mapping profile: %v", err))
	}
	return p
}

// Load reads a profile from a YAML file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping profile: %w", err)
	}
	p, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("mapping profile %s: %w", path, err)
	}
	return p, nil
}

func parse(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if len(p.Fields) == 0 {
		return nil, fmt.Errorf("profile defines no fields")
	}

	p.index = make(map[string]string)
	for canonical, aliases := range p.Fields {
		// A canonical name always matches itself.
		p.index[normalize(canonical)] = canonical
		for _, alias := range aliases {
			p.index[normalize(alias)] = canonical
		}
	}
	return &p, nil
}

// Resolve maps a header-keyed record to canonical field names. Columns with
// no known alias are dropped; canonical fields absent from the record stay
// absent.
func (p *Profile) Resolve(rec csvio.Record) map[string]string {
	out := make(map[string]string, len(p.Fields))
	for header, value := range rec {
		canonical, ok := p.index[normalize(header)]
		if !ok {
			continue
		}
		out[canonical] = value
	}
	return out
}

// normalize folds case and strips separators so "Order ID", "order_id" and
// "orderId" all collide.
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '_', '-', '.', '/':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
