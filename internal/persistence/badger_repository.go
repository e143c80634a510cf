package persistence

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/jxskiss/base62"

	"price-action-bot-go/internal/backtest"
)

const runKeyPrefix = "run:"

// badgerRepository is the BadgerDB implementation of the RunRepository.
type badgerRepository struct {
	db *badger.DB
}

// NewBadgerRepository creates and returns a new repository instance connected
// to a BadgerDB database at dbPath.
func NewBadgerRepository(dbPath string) (RunRepository, error) {
	opts := badger.DefaultOptions(dbPath)
	// Badger's own logging would drown our zap output; errors still
	// surface through the returned values.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerRepository{db: db}, nil
}

// SaveRun marshals the result to JSON and stores it under a compact,
// time-ordered base62 run id.
func (r *badgerRepository) SaveRun(res *backtest.Result) (string, error) {
	data, err := json.Marshal(res)
	if err != nil {
		return "", err
	}

	id := newRunID()
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+id), data)
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// LoadRun loads a saved result. A missing id yields (nil, nil).
func (r *badgerRepository) LoadRun(id string) (*backtest.Result, error) {
	var res backtest.Result

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 0 {
				return errors.New("run value is empty in database")
			}
			return json.Unmarshal(val, &res)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil // expected "no run found" case
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListRuns iterates the run keyspace and returns every saved id.
func (r *badgerRepository) ListRuns() ([]string, error) {
	var ids []string
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: []byte(runKeyPrefix)})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(runKeyPrefix):]))
		}
		return nil
	})
	return ids, err
}

// Close gracefully closes the connection to the database.
func (r *badgerRepository) Close() error {
	return r.db.Close()
}

// newRunID encodes the current unix-nano timestamp in base62; ids stay
// short and sort roughly by creation time.
func newRunID() string {
	return string(base62.FormatInt(time.Now().UnixNano()))
}
