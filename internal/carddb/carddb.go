// Package carddb loads the card reference database and resolves raw
// on-page card names to canonical card codes.
package carddb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the read-only sqlite card reference database
type DB struct {
	db *sql.DB
}

// Open opens the card database at the given path
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open card db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping card db: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the underlying connection
func (d *DB) Close() error {
	return d.db.Close()
}

// LoadResolver reads every (name, codes) row once and returns an immutable
// in-memory resolver shared by all extraction calls of one crawl session.
// A card reprinted under several codes stores them as one JSON-array row;
// the first listed code of a row is canonical for that print group. Cards
// sharing a name across sets appear as separate rows.
func (d *DB) LoadResolver(ctx context.Context) (*Resolver, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT card_name_jp, card_code_jp FROM ptcg_card`)
	if err != nil {
		return nil, fmt.Errorf("load card names: %w", err)
	}
	defer rows.Close()

	groups := make(map[string][][]string)
	for rows.Next() {
		var name, rawCodes string
		if err := rows.Scan(&name, &rawCodes); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		group := codeGroup(rawCodes)
		if len(group) == 0 {
			continue
		}
		groups[name] = append(groups[name], group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}

	return &Resolver{groups: groups}, nil
}

// codeGroup unpacks a card_code_jp cell. The builder stores either a bare
// code or a JSON array of codes for reprints.
func codeGroup(raw string) []string {
	if len(raw) == 0 {
		return nil
	}
	if raw[0] != '[' {
		return []string{raw}
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil || len(codes) == 0 {
		return nil
	}
	return codes
}

// Resolver maps raw card name text and on-page codes to canonical card
// codes. It is immutable after creation and safe for shared reads.
type Resolver struct {
	groups map[string][][]string
}

// NewResolver builds a resolver from a name-to-print-group table
func NewResolver(byName map[string][]string) *Resolver {
	groups := make(map[string][][]string, len(byName))
	for name, group := range byName {
		if len(group) == 0 {
			continue
		}
		copied := make([]string, len(group))
		copy(copied, group)
		groups[name] = [][]string{copied}
	}
	return &Resolver{groups: groups}
}

// Resolve returns the canonical code for the raw name, or the raw text
// unchanged when no exact match exists. Unknown cards never fail; an
// unresolved name must not block deck extraction.
func (r *Resolver) Resolve(raw string) string {
	if r == nil {
		return raw
	}
	if groups, ok := r.groups[raw]; ok && len(groups) > 0 {
		return groups[0][0]
	}
	return raw
}

// ResolveCard maps an on-page (name, code) pair to the canonical code of
// its print group, so every reprint of one card persists under one
// identifier. A pair the database does not know keeps its on-page code.
func (r *Resolver) ResolveCard(name, code string) string {
	if r == nil {
		return code
	}
	for _, group := range r.groups[name] {
		for _, c := range group {
			if c == code {
				return group[0]
			}
		}
	}
	return code
}

// Len returns the number of loaded names
func (r *Resolver) Len() int {
	return len(r.groups)
}
