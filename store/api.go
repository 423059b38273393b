package store

import (
	"context"
	"errors"
	"time"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
)

// ErrNotFound is returned when a feature set id is unknown.
var ErrNotFound = errors.New("store: feature set not found")

// SetInfo summarizes a stored feature set.
type SetInfo struct {
	ID        string
	Name      string
	Dim       int
	Count     int
	CreatedAt time.Time
}

// Store defines the feature set persistence API.
type Store interface {
	// Save stores features under a new id and returns it.
	Save(ctx context.Context, name string, features *descriptor.Features) (string, error)

	// Load returns the features of a stored set in their original order.
	Load(ctx context.Context, id string) (*descriptor.Features, error)

	// List returns all stored sets, oldest first.
	List(ctx context.Context) ([]SetInfo, error)

	// Delete removes a set and its features.
	Delete(ctx context.Context, id string) error

	// NearestExact returns the k stored descriptors of set id closest to query.
	NearestExact(ctx context.Context, id string, query descriptor.Descriptor, k int) ([]index.Neighbor, error)
}
