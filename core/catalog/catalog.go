// Package catalog - Authoritative module catalog
// Defines the canonical list of modules with their minimum tier and billing shape.
// This is the source of truth for tier resolution and module pricing.
package catalog

import (
	"fmt"
	"sort"

	"plan-advisor/core/types"
)

// ModuleDefinition is a catalog entry for a sellable module
type ModuleDefinition struct {
	Name string `json:"name" yaml:"name"`

	// Area groups modules for display only
	Area string `json:"area" yaml:"area"`

	// MinTier is the lowest tier that includes the module (0 = no requirement)
	MinTier types.TierID `json:"min_tier,omitempty" yaml:"min_tier,omitempty"`

	Shape types.BillingShape `json:"shape" yaml:"shape"`

	// WebOnly modules count every seat as a web seat unless told otherwise
	WebOnly bool `json:"web_only,omitempty" yaml:"web_only,omitempty"`

	// Connector is set for modules sold with an included allowance plus packs
	Connector *ConnectorSpec `json:"connector,omitempty" yaml:"connector,omitempty"`

	// Aliases are alternative names accepted on lookup
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// ConnectorSpec describes a connector module's allowance and add-on packs
type ConnectorSpec struct {
	// Included is the allowance bundled with each tier
	Included map[types.TierID]int `json:"included" yaml:"included"`

	// PackSizes are the purchasable pack sizes
	PackSizes []int `json:"pack_sizes" yaml:"pack_sizes"`

	// Unit and UnitPlural name what is being connected, e.g. "banco"
	Unit       string `json:"unit,omitempty" yaml:"unit,omitempty"`
	UnitPlural string `json:"unit_plural,omitempty" yaml:"unit_plural,omitempty"`
}

// UnitLabel returns the singular or plural unit name for n
func (s *ConnectorSpec) UnitLabel(n int) string {
	if n == 1 && s.Unit != "" {
		return s.Unit
	}
	if s.UnitPlural != "" {
		return s.UnitPlural
	}
	return s.Unit
}

// IncludedAt returns the allowance bundled with a tier
func (s *ConnectorSpec) IncludedAt(tier types.TierID) int {
	if s == nil {
		return 0
	}
	return s.Included[tier]
}

// PackProduct returns the rate table product name of a pack
func PackProduct(module string, size int) string {
	return fmt.Sprintf("%s %d", module, size)
}

// LegacyExtra is a legacy feature that imposes a tier floor when carried over
type LegacyExtra struct {
	Name    string       `json:"name" yaml:"name"`
	MinTier types.TierID `json:"min_tier" yaml:"min_tier"`

	// Notice is shown whenever the customer owned the feature
	Notice string `json:"notice,omitempty" yaml:"notice,omitempty"`
}

// Rule declares that a module needs another module to be selected
type Rule struct {
	Module   string `json:"module" yaml:"module"`
	Requires string `json:"requires" yaml:"requires"`
	Message  string `json:"message" yaml:"message"`
}

// Catalog is the authoritative module catalog
type Catalog struct {
	modules map[string]*ModuleDefinition
	aliases map[string]string
	order   []string
	extras  map[string]*LegacyExtra
	rules   []Rule
	regions map[string]*Region
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		modules: make(map[string]*ModuleDefinition),
		aliases: make(map[string]string),
		extras:  make(map[string]*LegacyExtra),
		regions: make(map[string]*Region),
	}
}

// Register adds a module to the catalog. Names and aliases must be unique.
func (c *Catalog) Register(def ModuleDefinition) error {
	key := Normalize(def.Name)
	if key == "" {
		return fmt.Errorf("module name is empty")
	}
	if _, exists := c.modules[key]; exists {
		return fmt.Errorf("module %q already registered", def.Name)
	}
	if owner, exists := c.aliases[key]; exists {
		return fmt.Errorf("module %q collides with an alias of %q", def.Name, c.modules[owner].Name)
	}
	for _, alias := range def.Aliases {
		ak := Normalize(alias)
		if _, exists := c.modules[ak]; exists {
			return fmt.Errorf("alias %q of %q collides with a module", alias, def.Name)
		}
		if _, exists := c.aliases[ak]; exists {
			return fmt.Errorf("alias %q registered twice", alias)
		}
	}
	c.put(key, def)
	return nil
}

// Put adds or replaces a module
func (c *Catalog) Put(def ModuleDefinition) {
	key := Normalize(def.Name)
	if old, exists := c.modules[key]; exists {
		for _, alias := range old.Aliases {
			delete(c.aliases, Normalize(alias))
		}
		c.modules[key] = &def
		for _, alias := range def.Aliases {
			c.aliases[Normalize(alias)] = key
		}
		return
	}
	c.put(key, def)
}

func (c *Catalog) put(key string, def ModuleDefinition) {
	c.modules[key] = &def
	c.order = append(c.order, key)
	for _, alias := range def.Aliases {
		c.aliases[Normalize(alias)] = key
	}
}

// Lookup finds a module by name or alias, ignoring case and accents
func (c *Catalog) Lookup(name string) (*ModuleDefinition, bool) {
	key := Normalize(name)
	if def, ok := c.modules[key]; ok {
		return def, true
	}
	if owner, ok := c.aliases[key]; ok {
		return c.modules[owner], true
	}
	return nil, false
}

// Modules returns all modules in registration order
func (c *Catalog) Modules() []*ModuleDefinition {
	result := make([]*ModuleDefinition, 0, len(c.order))
	for _, key := range c.order {
		result = append(result, c.modules[key])
	}
	return result
}

// Areas returns the distinct areas in first-seen order
func (c *Catalog) Areas() []string {
	seen := make(map[string]bool)
	var areas []string
	for _, def := range c.Modules() {
		if !seen[def.Area] {
			seen[def.Area] = true
			areas = append(areas, def.Area)
		}
	}
	return areas
}

// ByArea returns the modules of one area in registration order
func (c *Catalog) ByArea(area string) []*ModuleDefinition {
	var result []*ModuleDefinition
	for _, def := range c.Modules() {
		if def.Area == area {
			result = append(result, def)
		}
	}
	return result
}

// RegisterLegacyExtra adds or replaces a legacy feature floor
func (c *Catalog) RegisterLegacyExtra(extra LegacyExtra) {
	c.extras[Normalize(extra.Name)] = &extra
}

// LegacyExtra finds a legacy feature by name
func (c *Catalog) LegacyExtra(name string) (*LegacyExtra, bool) {
	extra, ok := c.extras[Normalize(name)]
	return extra, ok
}

// LegacyExtras returns all legacy features sorted by name
func (c *Catalog) LegacyExtras() []*LegacyExtra {
	result := make([]*LegacyExtra, 0, len(c.extras))
	for _, extra := range c.extras {
		result = append(result, extra)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// LegacyExtraFloors returns the floor of every legacy feature keyed by normalized name
func (c *Catalog) LegacyExtraFloors() map[string]types.TierID {
	floors := make(map[string]types.TierID, len(c.extras))
	for key, extra := range c.extras {
		floors[key] = extra.MinTier
	}
	return floors
}

// AddRule adds a module dependency rule
func (c *Catalog) AddRule(rule Rule) {
	c.rules = append(c.rules, rule)
}

// Rules returns all dependency rules in insertion order
func (c *Catalog) Rules() []Rule {
	result := make([]Rule, len(c.rules))
	copy(result, c.rules)
	return result
}

// RegisterRegion adds or replaces a regional variant
func (c *Catalog) RegisterRegion(region Region) {
	c.regions[Normalize(region.Code)] = &region
}

// Region finds a regional variant by code or name
func (c *Catalog) Region(codeOrName string) (*Region, bool) {
	key := Normalize(codeOrName)
	if r, ok := c.regions[key]; ok {
		return r, true
	}
	for _, r := range c.regions {
		if Normalize(r.Name) == key {
			return r, true
		}
	}
	return nil, false
}

// Regions returns all regional variants sorted by code
func (c *Catalog) Regions() []*Region {
	result := make([]*Region, 0, len(c.regions))
	for _, r := range c.regions {
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// Clone returns an independent copy of the catalog
func (c *Catalog) Clone() *Catalog {
	out := NewCatalog()
	for _, def := range c.Modules() {
		out.put(Normalize(def.Name), *def)
	}
	for key, extra := range c.extras {
		e := *extra
		out.extras[key] = &e
	}
	out.rules = c.Rules()
	for key, r := range c.regions {
		reg := *r
		out.regions[key] = &reg
	}
	return out
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{ByShape: make(map[types.BillingShape]int)}
	for _, def := range c.Modules() {
		stats.Modules++
		stats.ByShape[def.Shape]++
		if def.Connector != nil {
			stats.Connectors++
		}
	}
	stats.Areas = len(c.Areas())
	stats.LegacyExtras = len(c.extras)
	stats.Rules = len(c.rules)
	stats.Regions = len(c.regions)
	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Modules      int                        `json:"modules"`
	Areas        int                        `json:"areas"`
	Connectors   int                        `json:"connectors"`
	LegacyExtras int                        `json:"legacy_extras"`
	Rules        int                        `json:"rules"`
	Regions      int                        `json:"regions"`
	ByShape      map[types.BillingShape]int `json:"by_shape"`
}
