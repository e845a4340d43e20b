package domain

import "context"

type Technology struct {
	ID   string `json:"id"` // canonical slug, e.g. "google_app_engine"
	Name string `json:"name"`
}

// TechnologyCatalog returns (nil, nil) for unknown ids.
type TechnologyCatalog interface {
	GetByID(ctx context.Context, id string) (*Technology, error)
}
