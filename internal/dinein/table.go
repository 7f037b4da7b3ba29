package dinein

import (
	"errors"

	"github.com/bistro-app/api/internal/enum"
)

// Errors returned by the table registry.
var (
	ErrTableNotFound     = errors.New("table not found")
	ErrInvalidTableState = errors.New("invalid table status")
)

// Table is one seat group on the floor.
type Table struct {
	Number int    `json:"number"`
	Status string `json:"status"`
}

// Registry is a fixed set of tables numbered 1..N.
//
// It does not know about orders: callers keep table occupancy consistent with
// the active order. Registry is not safe for concurrent use on its own.
type Registry struct {
	tables []Table
}

// NewRegistry creates n available tables.
func NewRegistry(n int) *Registry {
	tables := make([]Table, n)
	for i := range tables {
		tables[i] = Table{Number: i + 1, Status: enum.TableStatusAvailable}
	}
	return &Registry{tables: tables}
}

// FindByNumber returns a copy of the table with the given number.
func (r *Registry) FindByNumber(number int) (Table, bool) {
	i := r.index(number)
	if i < 0 {
		return Table{}, false
	}
	return r.tables[i], true
}

// SetStatus updates a table's status.
func (r *Registry) SetStatus(number int, status string) error {
	if status != enum.TableStatusAvailable && status != enum.TableStatusOccupied {
		return ErrInvalidTableState
	}
	i := r.index(number)
	if i < 0 {
		return ErrTableNotFound
	}
	r.tables[i].Status = status
	return nil
}

// List returns a snapshot of all tables in number order.
func (r *Registry) List() []Table {
	return append([]Table(nil), r.tables...)
}

// Len is the number of tables.
func (r *Registry) Len() int { return len(r.tables) }

func (r *Registry) index(number int) int {
	for i, t := range r.tables {
		if t.Number == number {
			return i
		}
	}
	return -1
}
