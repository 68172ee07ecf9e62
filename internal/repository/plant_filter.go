package repository

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/iliyamo/plant-catalog/internal/model"
)

// searchFields are matched by the free-text term.  tags is an array; a regex
// against an array matches when any element matches.
var searchFields = []string{"name", "species", "tags", "chakra"}

// PlantFilter selects plants for the list operation.  An empty Query and a
// nil Featured each drop their clause; with both dropped every plant matches.
type PlantFilter struct {
	Query    string // case-insensitive substring of name, species, any tag or chakra
	Featured *bool  // exact match on featured
}

// BSON builds the MongoDB predicate.  The query term is matched literally:
// regex metacharacters are escaped.
func (f PlantFilter) BSON() bson.M {
	filt := bson.M{}
	if f.Query != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
		or := make(bson.A, 0, len(searchFields))
		for _, field := range searchFields {
			or = append(or, bson.M{field: re})
		}
		filt["$or"] = or
	}
	if f.Featured != nil {
		filt["featured"] = *f.Featured
	}
	return filt
}

// Matches evaluates the same predicate as BSON against an in-memory plant.
func (f PlantFilter) Matches(p model.Plant) bool {
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	contains := func(s string) bool { return strings.Contains(strings.ToLower(s), q) }
	if contains(p.Name) {
		return true
	}
	if p.Species != nil && contains(*p.Species) {
		return true
	}
	for _, tag := range p.Tags {
		if contains(tag) {
			return true
		}
	}
	return p.Chakra != nil && contains(*p.Chakra)
}
