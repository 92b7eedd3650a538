package nametable

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "pokerec/deckworker/pkg/errors"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
)

type fakeFetcher struct {
	html string
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (*goquery.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return goquery.NewDocumentFromReader(strings.NewReader(f.html))
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "names.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

const nameTableHTML = `<html><body><table>
	<tr><th>No.</th><th>日本語</th><th>中文</th></tr>
	<tr><td>7</td><td>ゼニガメ</td><td>傑尼龜</td></tr>
	<tr><td>abc</td><td>ダミー</td><td>假的</td></tr>
	<tr><td>0</td><td>ダミー</td><td>假的</td></tr>
	<tr><td>11</td><td>トランセル</td><td>鐵甲蛹` + "\n" + `铁甲蛹</td></tr>
	<tr><td>12</td><td></td><td>巴大蝶</td></tr>
</table></body></html>`

func TestRunInsertsValidRowsOnly(t *testing.T) {
	db := openTestDB(t)
	b := NewBuilder(&fakeFetcher{html: nameTableHTML}, db, "https://wiki.example/names", "")

	inserted, err := b.Run(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 2, inserted)

	rows, err := db.Query(`SELECT number, name_source, name_target FROM name_mapping ORDER BY number`)
	assert.NoError(t, err)
	defer rows.Close()

	var got []Row
	for rows.Next() {
		var r Row
		assert.NoError(t, rows.Scan(&r.Number, &r.NameSource, &r.NameTarget))
		got = append(got, r)
	}
	assert.NoError(t, rows.Err())

	// "7" parses as integer 7; "abc" and "0" are skipped; the multi-line
	// cell keeps only the first line
	assert.Equal(t, []Row{
		{Number: 7, NameSource: "ゼニガメ", NameTarget: "傑尼龜"},
		{Number: 11, NameSource: "トランセル", NameTarget: "鐵甲蛹"},
	}, got)
}

func TestRunReplacesPreviousTable(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	b := NewBuilder(&fakeFetcher{html: nameTableHTML}, db, "https://wiki.example/names", "")
	_, err := b.Run(ctx)
	assert.NoError(t, err)
	_, err = b.Run(ctx)
	assert.NoError(t, err)

	// Drop-then-recreate: a second run does not accumulate rows
	var n int
	assert.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM name_mapping`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestRunFetchFailure(t *testing.T) {
	db := openTestDB(t)
	b := NewBuilder(&fakeFetcher{err: pkgerrors.NewAutomation("https://wiki.example/names", "boom", nil)},
		db, "https://wiki.example/names", "")

	_, err := b.Run(context.Background())
	assert.Error(t, err)
}
