package interfaces

import (
	"context"
	"errors"

	"blocks-api/types/dataclasses"
)

var ErrBlockNotFound = errors.New("block not found")

// BlockStorage is the blocks table. Implementations must be safe for
// concurrent use.
type BlockStorage interface {
	// List returns all blocks ordered by Number, ties broken by Id.
	List(ctx context.Context) ([]dataclasses.Block, error)

	// Get returns ErrBlockNotFound when no block has the id.
	Get(ctx context.Context, id int64) (dataclasses.Block, error)

	// Create ignores block.Id and returns the stored block with its new id.
	Create(ctx context.Context, block dataclasses.Block) (dataclasses.Block, error)

	// Update replaces the row identified by block.Id.
	Update(ctx context.Context, block dataclasses.Block) (dataclasses.Block, error)

	Delete(ctx context.Context, id int64) error

	GetStorageName() string
	Close() error
}
