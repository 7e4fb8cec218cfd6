// Package feature is the catalog of named capabilities that roles grant.
package feature

import (
	"context"
	"strings"
	"time"
)

// CollectionName is the collection features are stored in.
const CollectionName = "features"

// Feature is a named capability. Features are created lazily the first time a
// name is needed and are never deleted.
type Feature struct {
	ID         string    `bson:"_id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	CatalogKey string    `bson:"catalogKey" json:"catalogKey"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

func (f *Feature) AggregateID() string    { return f.ID }
func (f *Feature) CollectionName() string { return CollectionName }

// Slug normalizes a feature name into its catalog key: trimmed, lowercased,
// with runs of whitespace replaced by a single underscore.
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "_")
}

// MissingIDs returns the ids that do not name a stored feature, in input
// order.
func MissingIDs(ctx context.Context, repo Repository, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(found))
	for _, f := range found {
		known[f.ID] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}
