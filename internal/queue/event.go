// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// PlantCreatedQueue is the durable queue carrying PlantCreatedEvent messages.
const PlantCreatedQueue = "plant.created"

// Event sources.
const (
	SourceAPI  = "api"
	SourceSeed = "seed"
)

// PlantCreatedEvent is published after a plant is stored, either through the
// create endpoint or by seeding.  It carries enough for downstream consumers
// to log or index the plant without querying the database.
type PlantCreatedEvent struct {
	PlantID   string   `json:"plant_id"`
	Name      string   `json:"name"`
	Species   string   `json:"species,omitempty"`
	Chakra    string   `json:"chakra,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Tags      []string `json:"tags"`
	Featured  bool     `json:"featured"`
	Source    string   `json:"source"`
	CreatedAt string   `json:"created_at"`
}
