package videogen

// Catalog is the static registry of rendering backends. Pure query surface,
// no side effects.
type Catalog struct {
	providers []Provider
}

// NewCatalog creates a catalog with the given providers, or the built-in
// default set when none are given.
func NewCatalog(providers ...Provider) *Catalog {
	if len(providers) == 0 {
		providers = defaultProviders
	}
	return &Catalog{providers: providers}
}

// All returns every registered provider.
func (c *Catalog) All() []Provider {
	out := make([]Provider, len(c.providers))
	copy(out, c.providers)
	return out
}

// Find returns providers supporting the exact duration. An unsupported
// duration yields an empty slice, which callers must treat as a hard
// selection failure rather than falling back to a default.
func (c *Catalog) Find(duration int) []Provider {
	var out []Provider
	for _, p := range c.providers {
		if p.SupportsDuration(duration) {
			out = append(out, p)
		}
	}
	return out
}

// Lookup returns the provider with the given ID.
func (c *Catalog) Lookup(id string) (Provider, bool) {
	for _, p := range c.providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// IDs returns every catalog identifier, used in error reporting so callers
// never have to guess valid values.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.providers))
	for i, p := range c.providers {
		ids[i] = p.ID
	}
	return ids
}

var defaultProviders = []Provider{
	{
		ID:                 "infinitalk/single",
		Name:               "InfiniteTalk",
		Type:               ProviderTypeAvatar,
		CostPerTenSeconds:  0.35,
		QualityScore:       8,
		SpeedScore:         6,
		SupportedDurations: []int{5, 10, 15, 30},
		BestFor:            []string{"talking_head", "ugc", "educational"},
	},
	{
		ID:                 "omnihuman/v1_5",
		Name:               "OmniHuman 1.5",
		Type:               ProviderTypeAvatar,
		CostPerTenSeconds:  0.60,
		QualityScore:       9,
		SpeedScore:         5,
		SupportedDurations: []int{10, 15, 30},
		BestFor:            []string{"talking_head", "testimonial"},
	},
	{
		ID:                 "veed/fabric-1.0",
		Name:               "VEED Fabric",
		Type:               ProviderTypeAvatar,
		CostPerTenSeconds:  0.40,
		QualityScore:       7,
		SpeedScore:         7,
		SupportedDurations: []int{5, 10, 30, 60},
		BestFor:            []string{"ugc", "talking_head"},
	},
	{
		ID:                 "kling/v2-6",
		Name:               "Kling 2.6",
		Type:               ProviderTypeGenerative,
		CostPerTenSeconds:  0.70,
		QualityScore:       9,
		SpeedScore:         4,
		SupportedDurations: []int{5, 10},
		BestFor:            []string{"dance", "cinematic", "product"},
	},
	{
		ID:                 "kling/v2-1",
		Name:               "Kling 2.1",
		Type:               ProviderTypeGenerative,
		CostPerTenSeconds:  0.45,
		QualityScore:       7,
		SpeedScore:         6,
		SupportedDurations: []int{5, 10},
		BestFor:            []string{"dance", "broll"},
	},
	{
		ID:                 "seedance/v1-pro",
		Name:               "Seedance 1.0 Pro",
		Type:               ProviderTypeGenerative,
		CostPerTenSeconds:  0.50,
		QualityScore:       8,
		SpeedScore:         7,
		SupportedDurations: []int{5, 10, 12},
		BestFor:            []string{"product", "cinematic"},
	},
	{
		ID:                 "hailuo/02",
		Name:               "Hailuo 02",
		Type:               ProviderTypeGenerative,
		CostPerTenSeconds:  0.30,
		QualityScore:       6,
		SpeedScore:         8,
		SupportedDurations: []int{6, 10},
		BestFor:            []string{"meme", "dance"},
	},
}
