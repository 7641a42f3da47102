package providers

import "sort"

// ModelSpec holds the static per-model settings used at dispatch time.
type ModelSpec struct {
	ID            string  `json:"id"`
	Provider      string  `json:"provider"`
	ContextWindow int     `json:"context_window"`
	Temperature   float32 `json:"temperature"`
}

// Catalog is the immutable model lookup table. It is built once at startup
// and shared by reference; concurrent reads need no locking.
type Catalog struct {
	specs map[string]ModelSpec
}

// NewCatalog builds the default model catalog.
func NewCatalog() *Catalog {
	return newCatalog(
		ModelSpec{ID: "gpt-4.1-2025-04-14", Provider: ProviderOpenAI, ContextWindow: 1047576, Temperature: 1},
		ModelSpec{ID: "gpt-4.1-mini", Provider: ProviderOpenAI, ContextWindow: 1047576, Temperature: 1},
		ModelSpec{ID: "gpt-4o", Provider: ProviderOpenAI, ContextWindow: 128000, Temperature: 1},
		ModelSpec{ID: "o3-mini", Provider: ProviderOpenAI, ContextWindow: 200000, Temperature: 1},
		ModelSpec{ID: "o4-mini", Provider: ProviderOpenAI, ContextWindow: 200000, Temperature: 1},
		ModelSpec{ID: "gemini-2.0-flash", Provider: ProviderGoogleAI, ContextWindow: 1048576, Temperature: 0.7},
		ModelSpec{ID: "gemini-2.0-flash-lite", Provider: ProviderGoogleAI, ContextWindow: 1048576, Temperature: 0.7},
		ModelSpec{ID: "gemini-2.5-pro", Provider: ProviderGoogleAI, ContextWindow: 1048576, Temperature: 0.7},
	)
}

func newCatalog(specs ...ModelSpec) *Catalog {
	c := &Catalog{specs: make(map[string]ModelSpec, len(specs))}
	for _, s := range specs {
		c.specs[s.ID] = s
	}
	return c
}

// Get returns the spec for a model, if known.
func (c *Catalog) Get(model string) (ModelSpec, bool) {
	s, ok := c.specs[model]
	return s, ok
}

// Temperature returns the configured temperature for a model, 0 if unknown.
func (c *Catalog) Temperature(model string) float32 {
	if s, ok := c.specs[model]; ok {
		return s.Temperature
	}
	return 0
}

// Models lists every catalog entry.
func (c *Catalog) Models() []ModelSpec {
	specs := make([]ModelSpec, 0, len(c.specs))
	for _, s := range c.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].ID < specs[j].ID })
	return specs
}
