// Package store holds the generated dataset in memory.
//
// Rows keep their generation order; the injector needs that order, not
// timestamp order. The per-user index lists row positions in insertion order
// so a user's history can be walked without rescanning the whole table.
package store

import (
	"errors"

	"lumina/upi-synth/internal/domain"
)

// ErrDuplicateTransaction is returned when a transaction ID is appended twice.
var ErrDuplicateTransaction = errors.New("transaction already exists")

// Table is an ordered, in-memory transaction table. It is not safe for
// concurrent use; the generator has a single writer.
type Table struct {
	rows []domain.Transaction
	ids  map[string]int

	// Secondary index: user ID → row positions, in insertion order.
	byUser map[string][]int
	// Distinct user IDs in the order they first appeared.
	users []string
}

// New creates an empty table sized for n rows.
func New(n int) *Table {
	return &Table{
		rows:   make([]domain.Transaction, 0, n),
		ids:    make(map[string]int, n),
		byUser: make(map[string][]int),
	}
}

// FromRecords builds a table from rows in their given order.
func FromRecords(rows []domain.Transaction) (*Table, error) {
	t := New(len(rows))
	for i := range rows {
		if err := t.Append(rows[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ─── Writes ───────────────────────────────────────────────────────────────────

// Append adds a row at the end of the table and updates the user index.
// Returns ErrDuplicateTransaction if the ID already exists.
func (t *Table) Append(tx domain.Transaction) error {
	if _, exists := t.ids[tx.TransactionID]; exists {
		return ErrDuplicateTransaction
	}

	pos := len(t.rows)
	t.rows = append(t.rows, tx)
	t.ids[tx.TransactionID] = pos

	if _, seen := t.byUser[tx.UserID]; !seen {
		t.users = append(t.users, tx.UserID)
	}
	t.byUser[tx.UserID] = append(t.byUser[tx.UserID], pos)
	return nil
}

// Relabel marks row i as fraud of the given archetype. Any earlier label is
// overwritten; no other field changes.
func (t *Table) Relabel(i int, archetype string) {
	t.rows[i].MarkFraud(archetype)
}

// ─── Reads ────────────────────────────────────────────────────────────────────

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// At returns a pointer to row i. The pointer is invalidated by Append.
func (t *Table) At(i int) *domain.Transaction { return &t.rows[i] }

// Get looks up a row by transaction ID. The generator itself walks rows by
// position; Get exists for inspecting a finished table.
func (t *Table) Get(id string) (*domain.Transaction, bool) {
	i, ok := t.ids[id]
	if !ok {
		return nil, false
	}
	return &t.rows[i], true
}

// Records returns the rows in generation order. The slice is shared with the
// table.
func (t *Table) Records() []domain.Transaction { return t.rows }

// Users returns distinct user IDs in first-seen order.
func (t *Table) Users() []string {
	out := make([]string, len(t.users))
	copy(out, t.users)
	return out
}

// UserRows returns the row positions belonging to userID, in insertion order.
func (t *Table) UserRows(userID string) []int {
	return t.byUser[userID]
}

// FraudCount returns how many rows are currently labeled fraudulent.
func (t *Table) FraudCount() int {
	n := 0
	for i := range t.rows {
		if t.rows[i].IsFraud {
			n++
		}
	}
	return n
}
