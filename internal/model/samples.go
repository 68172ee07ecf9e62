package model

// SamplePlants returns the fixed set of example plants inserted by the seed
// operation.  A fresh slice is built on every call so callers may modify it.
func SamplePlants() []Plant {
	return []Plant{
		{
			Name:        "Red Spider Lily",
			Species:     ptr("Lycoris radiata"),
			PotStyle:    ptr("Matte porcelain, pale pink"),
			Chakra:      ptr("Root"),
			Mantra:      ptr("I am grounded and safe."),
			Description: ptr("A serene arrangement where a single glowing orb invites a grounding breath."),
			Price:       ptr(120.0),
			Tags:        []string{"minimalist", "grounding", "red"},
			Featured:    true,
			ImageURL:    ptr("https://images.unsplash.com/photo-1501004318641-b39e6451bec6?auto=format&fit=crop&w=1200&q=60"),
		},
		{
			Name:        "White Peace Lily",
			Species:     ptr("Spathiphyllum"),
			PotStyle:    ptr("Sand-textured ceramic"),
			Chakra:      ptr("Heart"),
			Mantra:      ptr("I breathe in calm, I breathe out love."),
			Description: ptr("Soft curves and gentle leaves that soften any room."),
			Price:       ptr(95.0),
			Tags:        []string{"peace", "white", "air-purifier"},
			Featured:    false,
			ImageURL:    ptr("https://images.unsplash.com/photo-1519681393784-d120267933ba?auto=format&fit=crop&w=1200&q=60"),
		},
		{
			Name:        "Golden Pothos",
			Species:     ptr("Epipremnum aureum"),
			PotStyle:    ptr("Brushed brass large pot"),
			Chakra:      ptr("Solar Plexus"),
			Mantra:      ptr("I shine with quiet confidence."),
			Description: ptr("Trailing vines spill like sunlit ribbons."),
			Price:       ptr(80.0),
			Tags:        []string{"gold", "vining"},
			Featured:    false,
			ImageURL:    ptr("https://images.unsplash.com/photo-1524594081293-190a2fe0baae?auto=format&fit=crop&w=1200&q=60"),
		},
	}
}

func ptr[T any](v T) *T { return &v }
