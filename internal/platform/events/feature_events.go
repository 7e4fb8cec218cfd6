package events

import (
	"go.venuehub.tech/internal/platform/common"
	"go.venuehub.tech/internal/platform/feature"
)

// FeatureEnsured is emitted when a feature is added to the catalog
type FeatureEnsured struct {
	common.BaseDomainEvent
	FeatureID  string `json:"featureId"`
	Name       string `json:"name"`
	CatalogKey string `json:"catalogKey"`
}

func (e *FeatureEnsured) ToDataJSON() string {
	return common.MarshalDataJSON(struct {
		FeatureID  string `json:"featureId"`
		Name       string `json:"name"`
		CatalogKey string `json:"catalogKey"`
	}{
		FeatureID:  e.FeatureID,
		Name:       e.Name,
		CatalogKey: e.CatalogKey,
	})
}

func NewFeatureEnsured(ctx *common.ExecutionContext, f *feature.Feature) *FeatureEnsured {
	return &FeatureEnsured{
		BaseDomainEvent: newBase(ctx, EventTypeFeatureEnsured, "feature", f.ID),
		FeatureID:       f.ID,
		Name:            f.Name,
		CatalogKey:      f.CatalogKey,
	}
}
