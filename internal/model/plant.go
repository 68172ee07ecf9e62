package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// CollectionPlant is the MongoDB collection holding catalog plants.
const CollectionPlant = "plant"

// Plant is a catalog entry as stored in MongoDB: a plant in a large pot with
// a spiritual twist.  Optional fields are pointers so that a missing or null
// key decodes to nil instead of a zero value.
//
// Fields:
//
//	ID          – _id, assigned by the driver on insert and never changed.
//	Name        – display name, always present for records written by the API.
//	Species     – botanical species.
//	PotStyle    – design of the pot.
//	Chakra      – associated chakra or energy center.
//	Mantra      – short affirmation.
//	Description – story or spiritual meaning.
//	Price       – price in dollars, never negative.
//	Tags        – searchable tags in caller order; nil when the key is absent.
//	Featured    – highlighted on the homepage.
//	ImageURL    – photo of the plant in its pot.
type Plant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Species     *string            `bson:"species"`
	PotStyle    *string            `bson:"pot_style"`
	Chakra      *string            `bson:"chakra"`
	Mantra      *string            `bson:"mantra"`
	Description *string            `bson:"description"`
	Price       *float64           `bson:"price"`
	Tags        []string           `bson:"tags"`
	Featured    bool               `bson:"featured"`
	ImageURL    *string            `bson:"image_url"`
}

// PlantInput is the create payload.  It carries no id; the storage layer
// assigns one.  Validation tags are enforced by the Echo validator.
type PlantInput struct {
	Name        string   `json:"name" validate:"required"`
	Species     *string  `json:"species"`
	PotStyle    *string  `json:"pot_style"`
	Chakra      *string  `json:"chakra"`
	Mantra      *string  `json:"mantra"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	ImageURL    *string  `json:"image_url" validate:"omitnil,http_url"`
}

// Plant converts a validated input into a record ready for insertion.
// Tags default to an empty list so the stored document never holds null.
func (in PlantInput) Plant() Plant {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return Plant{
		Name:        in.Name,
		Species:     in.Species,
		PotStyle:    in.PotStyle,
		Chakra:      in.Chakra,
		Mantra:      in.Mantra,
		Description: in.Description,
		Price:       in.Price,
		Tags:        tags,
		Featured:    in.Featured,
		ImageURL:    in.ImageURL,
	}
}

// PlantOut is the externally visible representation of a Plant.  Absent
// optional fields are rendered as JSON null.
type PlantOut struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Species     *string  `json:"species"`
	PotStyle    *string  `json:"pot_style"`
	Chakra      *string  `json:"chakra"`
	Mantra      *string  `json:"mantra"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Tags        []string `json:"tags"`
	Featured    bool     `json:"featured"`
	ImageURL    *string  `json:"image_url"`
}

// Serialize converts a stored plant into its wire form.  The ObjectID becomes
// its hex string and missing tags become an empty list.  Nothing is
// re-validated on the read path.
func Serialize(p Plant) PlantOut {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PlantOut{
		ID:          p.ID.Hex(),
		Name:        p.Name,
		Species:     p.Species,
		PotStyle:    p.PotStyle,
		Chakra:      p.Chakra,
		Mantra:      p.Mantra,
		Description: p.Description,
		Price:       p.Price,
		Tags:        tags,
		Featured:    p.Featured,
		ImageURL:    p.ImageURL,
	}
}

// SerializeAll serializes a list of plants, always returning a non-nil slice
// so that an empty result encodes as [] rather than null.
func SerializeAll(plants []Plant) []PlantOut {
	out := make([]PlantOut, 0, len(plants))
	for _, p := range plants {
		out = append(out, Serialize(p))
	}
	return out
}
