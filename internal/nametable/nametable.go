// Package nametable builds the cross-language card name mapping table from
// one reference wiki page. It is an independent batch pipeline sharing no
// runtime state with the deck crawl.
package nametable

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"pokerec/deckworker/helpers"
	"pokerec/deckworker/internal/browser"
	"pokerec/deckworker/logger"

	"github.com/PuerkitoBio/goquery"
	_ "github.com/mattn/go-sqlite3"
)

// Row is one parsed name mapping: a dex number and the name in the source
// and target languages
type Row struct {
	Number     int
	NameSource string
	NameTarget string
}

// Builder scrapes the reference table and replaces the name_mapping table
// with its valid rows
type Builder struct {
	Fetcher     browser.Fetcher
	DB          *sql.DB
	URL         string
	RowSelector string

	log *logger.Logger
}

// NewBuilder creates a name table builder. rowSelector defaults to every
// table row on the page.
func NewBuilder(fetcher browser.Fetcher, db *sql.DB, url, rowSelector string) *Builder {
	if rowSelector == "" {
		rowSelector = "table tr"
	}
	return &Builder{
		Fetcher:     fetcher,
		DB:          db,
		URL:         url,
		RowSelector: rowSelector,
		log:         logger.ForBuilder(),
	}
}

// Run fetches the reference page and rebuilds the name_mapping table from
// its rows. The table is dropped and recreated first; invalid rows are
// skipped, never fatal. Returns the number of rows inserted.
func (b *Builder) Run(ctx context.Context) (int, error) {
	doc, err := b.Fetcher.Fetch(ctx, b.URL)
	if err != nil {
		return 0, fmt.Errorf("fetch name table page: %w", err)
	}

	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin name table tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS name_mapping`); err != nil {
		return 0, fmt.Errorf("drop name_mapping: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `CREATE TABLE name_mapping (
		id INTEGER PRIMARY KEY,
		number INTEGER NOT NULL,
		name_source TEXT NOT NULL,
		name_target TEXT NOT NULL
	)`); err != nil {
		return 0, fmt.Errorf("create name_mapping: %w", err)
	}

	inserted, skipped := 0, 0
	var insertErr error
	doc.Find(b.RowSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		row, ok := parseRow(s)
		if !ok {
			skipped++
			b.log.Debug().Int("row", i).Msg("invalid row skipped")
			return true
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO name_mapping (number, name_source, name_target) VALUES (?, ?, ?)`,
			row.Number, row.NameSource, row.NameTarget); err != nil {
			insertErr = fmt.Errorf("insert row %d: %w", row.Number, err)
			return false
		}
		inserted++
		return true
	})
	if insertErr != nil {
		return 0, insertErr
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit name table: %w", err)
	}

	b.log.Info().
		Int("inserted", inserted).
		Int("skipped", skipped).
		Msg("name table rebuilt")
	return inserted, nil
}

// parseRow extracts (number, source name, target name) from the fixed cell
// positions of one table row. Multi-line cells keep only the text before
// the first line break. Rows whose number is not a strictly positive
// integer are rejected.
func parseRow(s *goquery.Selection) (Row, bool) {
	cells := s.Find("td")
	if cells.Length() < 3 {
		return Row{}, false
	}

	number, err := strconv.Atoi(helpers.FirstLine(cells.Eq(0).Text()))
	if err != nil || number < 1 {
		return Row{}, false
	}

	source := helpers.FirstLine(cells.Eq(1).Text())
	target := helpers.FirstLine(cells.Eq(2).Text())
	if source == "" || target == "" {
		return Row{}, false
	}

	return Row{Number: number, NameSource: source, NameTarget: target}, true
}
