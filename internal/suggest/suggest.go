// Package suggest serves card name autocomplete suggestions from the card
// reference database.
package suggest

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	_ "github.com/mattn/go-sqlite3"
)

// suggestionLimit caps one response
const suggestionLimit = 10

// Repo reads candidate card names from the card database
type Repo struct {
	db *sql.DB
}

// NewRepo creates a suggestion repository over an open card database
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// Prefix returns up to suggestionLimit card names starting with query
func (r *Repo) Prefix(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT card_name_jp FROM ptcg_card WHERE card_name_jp LIKE ? LIMIT ?`,
		query+"%", suggestionLimit)
	if err != nil {
		return nil, fmt.Errorf("query suggestions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Handler exposes the suggestions endpoint
type Handler struct {
	Repo *Repo
}

// NewHandler creates a suggestions handler
func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

// RegisterRoutes mounts the handler on a router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/suggestions", h.suggestions) // GET /api/suggestions?query=
}

// suggestions answers with a JSON array of card names. The minimum query
// length lives client-side; an empty query just gets an empty array.
func (h *Handler) suggestions(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusOK, []string{})
		return
	}

	names, err := h.Repo.Prefix(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "suggestion lookup failed"})
		return
	}
	c.JSON(http.StatusOK, names)
}
