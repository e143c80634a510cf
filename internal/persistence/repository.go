package persistence

import "price-action-bot-go/internal/backtest"

// RunRepository defines the interface for persisting backtest runs.
// It abstracts the underlying storage mechanism (e.g., BadgerDB, in-memory)
// from the rest of the application.
type RunRepository interface {
	// SaveRun persists a completed backtest result and returns its run id.
	SaveRun(res *backtest.Result) (string, error)

	// LoadRun loads a previously saved result by run id.
	// If no run is found, it should return (nil, nil).
	LoadRun(id string) (*backtest.Result, error)

	// ListRuns returns the ids of all saved runs.
	ListRuns() ([]string, error)

	// Close gracefully closes the connection to the database.
	Close() error
}
