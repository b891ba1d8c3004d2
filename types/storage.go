package types

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"

	"blocks-api/types/config"
	"blocks-api/types/dataclasses"
	"blocks-api/types/interfaces"
)

var blocksBucket = []byte("blocks")

// NewStorage opens the blocks table on the backend selected in storageConfig.
func NewStorage(ctx context.Context, storageConfig config.StorageConfig) (interfaces.BlockStorage, error) {
	switch storageConfig.Backend {
	case config.STORAGE_BACKEND_BOLT:
		return NewBoltStorage(storageConfig.Bolt)
	case config.STORAGE_BACKEND_POSTGRES:
		return NewPostgresStorage(ctx, storageConfig.Postgres)
	}

	return nil, fmt.Errorf("unknown storage backend %q", storageConfig.Backend)
}

// SortBlocks orders blocks the way every backend lists them.
func SortBlocks(blocks []dataclasses.Block) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].Number != blocks[j].Number {
			return blocks[i].Number < blocks[j].Number
		}
		return blocks[i].Id < blocks[j].Id
	})
}

// boltBlockRecord is the value stored under a block id key.
type boltBlockRecord struct {
	_       struct{} `cbor:",toarray"`
	Number  int64
	Title   string
	Content string
}

type BoltStorage struct {
	sync.Mutex

	db   *bolt.DB
	path string
}

func NewBoltStorage(storageConfig config.BoltStorageConfig) (*BoltStorage, error) {
	if dir := filepath.Dir(storageConfig.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := bolt.Open(
		storageConfig.Path,
		0o600,
		&bolt.Options{Timeout: storageConfig.Timeout},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", storageConfig.Path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	config.GetLogger().Debugf("Opened bolt storage at %s", storageConfig.Path)

	return &BoltStorage{
		db:   db,
		path: storageConfig.Path,
	}, nil
}

func boltKey(id int64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func decodeBoltBlock(key, value []byte) (dataclasses.Block, error) {
	var record boltBlockRecord
	if err := cbor.Unmarshal(value, &record); err != nil {
		return dataclasses.Block{}, err
	}

	return dataclasses.Block{
		Id:      int64(binary.BigEndian.Uint64(key)),
		Number:  record.Number,
		Title:   record.Title,
		Content: record.Content,
	}, nil
}

func putBoltBlock(bucket *bolt.Bucket, block dataclasses.Block) error {
	value, err := cbor.Marshal(boltBlockRecord{
		Number:  block.Number,
		Title:   block.Title,
		Content: block.Content,
	})
	if err != nil {
		return err
	}

	return bucket.Put(boltKey(block.Id), value)
}

func (s *BoltStorage) List(ctx context.Context) ([]dataclasses.Block, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks := make([]dataclasses.Block, 0)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).ForEach(func(key, value []byte) error {
			block, err := decodeBoltBlock(key, value)
			if err != nil {
				return err
			}
			blocks = append(blocks, block)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list blocks: %w", err)
	}

	SortBlocks(blocks)

	return blocks, nil
}

func (s *BoltStorage) Get(ctx context.Context, id int64) (dataclasses.Block, error) {
	if err := ctx.Err(); err != nil {
		return dataclasses.Block{}, err
	}

	var block dataclasses.Block
	err := s.db.View(func(tx *bolt.Tx) error {
		key := boltKey(id)
		value := tx.Bucket(blocksBucket).Get(key)
		if value == nil {
			return interfaces.ErrBlockNotFound
		}

		var err error
		block, err = decodeBoltBlock(key, value)
		return err
	})

	return block, err
}

func (s *BoltStorage) Create(ctx context.Context, block dataclasses.Block) (dataclasses.Block, error) {
	if err := ctx.Err(); err != nil {
		return dataclasses.Block{}, err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(blocksBucket)

		sequence, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		block.Id = int64(sequence)

		return putBoltBlock(bucket, block)
	})
	if err != nil {
		return dataclasses.Block{}, fmt.Errorf("failed to create block: %w", err)
	}

	return block, nil
}

func (s *BoltStorage) Update(ctx context.Context, block dataclasses.Block) (dataclasses.Block, error) {
	if err := ctx.Err(); err != nil {
		return dataclasses.Block{}, err
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(blocksBucket)
		if bucket.Get(boltKey(block.Id)) == nil {
			return interfaces.ErrBlockNotFound
		}

		return putBoltBlock(bucket, block)
	})
	if err != nil {
		return dataclasses.Block{}, err
	}

	return block, nil
}

func (s *BoltStorage) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(blocksBucket)
		key := boltKey(id)
		if bucket.Get(key) == nil {
			return interfaces.ErrBlockNotFound
		}

		return bucket.Delete(key)
	})
}

func (s *BoltStorage) GetStorageName() string {
	return "bolt"
}

func (s *BoltStorage) GetPath() string {
	return s.path
}

func (s *BoltStorage) Close() error {
	s.Lock()
	defer s.Unlock()

	return s.db.Close()
}
