package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/localnerve/paperdb/internal/metrics"
	"github.com/localnerve/paperdb/internal/models"
	"github.com/localnerve/paperdb/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// SearchResult is one matching paper, described by its current version.
type SearchResult struct {
	PaperID  uint64             `json:"paperId"`
	Title    string             `json:"title"`
	Abstract string             `json:"abstract"`
	Status   models.PaperStatus `json:"status"`
}

type scoredResult struct {
	SearchResult
	Relevance float64
}

// joinCurrentVersion limits papers to their current version.
const joinCurrentVersion = "JOIN paper_versions v ON v.paper_id = p.paper_id AND v.version_number = p.current_version"

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in any dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// lower folds a column for case-insensitive matching. SQL Server collations
// are case-insensitive already and LOWER rejects its text columns.
func lower(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlserver" {
		return column
	}
	return "LOWER(" + column + ")"
}

// SearchPapers finds papers whose current version's title or abstract
// matches term, most relevant first, followed by papers carrying a tag that
// contains term, in paper id order. Each paper appears once.
func (e *Engine) SearchPapers(ctx context.Context, term string) ([]SearchResult, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, types.Validation("search term is required")
	}
	key := strings.ToLower(term)

	cached, generation, hit, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("search cache read failed", zap.Error(err))
	} else if hit {
		metrics.SearchCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.SearchCacheLookups.WithLabelValues("miss").Inc()

	results, err := e.search(ctx, term)
	if err != nil {
		return nil, err
	}

	if err := e.cache.Set(ctx, generation, key, results); err != nil {
		e.logger.Warn("search cache write failed", zap.Error(err))
	}
	return results, nil
}

func (e *Engine) search(ctx context.Context, term string) ([]SearchResult, error) {
	// each query below starts from its own statement
	db := e.db.WithContext(ctx).Clauses(hints.Comment("select", "paperdb:search")).Session(&gorm.Session{})

	textMatches, err := searchText(db, term)
	if err != nil {
		return nil, fmt.Errorf("search titles and abstracts: %w", err)
	}

	var tagMatches []SearchResult
	if err := db.Table("papers AS p").
		Select("p.paper_id, v.title, v.abstract, p.status").
		Joins(joinCurrentVersion).
		Where("EXISTS (SELECT 1 FROM paper_tags pt JOIN tags t ON t.tag_id = pt.tag_id"+
			" WHERE pt.paper_id = p.paper_id AND "+lower(db, "t.name")+" LIKE ? ESCAPE '!')", containsPattern(term)).
		Order("p.paper_id ASC").
		Scan(&tagMatches).Error; err != nil {
		return nil, fmt.Errorf("search tags: %w", err)
	}

	seen := make(map[uint64]struct{}, len(textMatches)+len(tagMatches))
	results := make([]SearchResult, 0, len(textMatches)+len(tagMatches))
	for _, m := range append(textMatches, tagMatches...) {
		if _, dup := seen[m.PaperID]; dup {
			continue
		}
		seen[m.PaperID] = struct{}{}
		results = append(results, m)
	}
	return results, nil
}

// searchText returns the papers whose current title or abstract matches
// term, most relevant first. PostgreSQL ranks in the database. Elsewhere the
// candidates are narrowed with LIKE and then kept only when a whole word of
// the term appears, scoring a title match 2 and an abstract match 1. MySQL
// adds its MATCH relevance to that score.
func searchText(db *gorm.DB, term string) ([]SearchResult, error) {
	base := db.Table("papers AS p").Joins(joinCurrentVersion)
	columns := "p.paper_id, v.title, v.abstract, p.status"

	if db.Dialector.Name() == "postgres" {
		document := "to_tsvector('english', coalesce(v.title, '') || ' ' || coalesce(v.abstract, ''))"
		query := "plainto_tsquery('english', ?)"
		var rows []scoredResult
		err := base.
			Select(columns+", ts_rank("+document+", "+query+") AS relevance", term).
			Where(document+" @@ "+query, term).
			Order("relevance DESC, p.paper_id ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}
		results := make([]SearchResult, len(rows))
		for i, r := range rows {
			results[i] = r.SearchResult
		}
		return results, nil
	}

	m := newWordMatcher(term)
	candidates, args := m.candidates(db)

	var rows []scoredResult
	var err error
	if db.Dialector.Name() == "mysql" {
		// InnoDB skips words shorter than innodb_ft_min_token_size, which the
		// word match still finds
		match := "MATCH(v.title, v.abstract) AGAINST (? IN NATURAL LANGUAGE MODE)"
		err = base.
			Select(columns+", "+match+" AS relevance", term).
			Where(match+" > 0 OR "+candidates, append([]interface{}{term}, args...)...).
			Scan(&rows).Error
	} else {
		err = base.
			Select(columns+", 0 AS relevance").
			Where(candidates, args...).
			Scan(&rows).Error
	}
	if err != nil {
		return nil, err
	}

	kept := rows[:0]
	for _, r := range rows {
		score := m.score(r.Title, r.Abstract)
		if score == 0 && r.Relevance <= 0 {
			continue
		}
		r.Relevance += score
		kept = append(kept, r)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Relevance != kept[j].Relevance {
			return kept[i].Relevance > kept[j].Relevance
		}
		return kept[i].PaperID < kept[j].PaperID
	})

	results := make([]SearchResult, len(kept))
	for i, r := range kept {
		results[i] = r.SearchResult
	}
	return results, nil
}

// wordMatcher matches whole words of a search term, ignoring case. A term
// without letters or digits, such as "%", is matched as a literal substring.
type wordMatcher struct {
	words   []string
	literal string
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func splitWords(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return !isWordRune(r) })
}

func newWordMatcher(term string) *wordMatcher {
	words := splitWords(term)
	if len(words) == 0 {
		return &wordMatcher{literal: strings.ToLower(term)}
	}
	return &wordMatcher{words: words}
}

// candidates is a LIKE condition admitting every row that could match.
func (m *wordMatcher) candidates(db *gorm.DB) (string, []interface{}) {
	needles := m.words
	if m.literal != "" {
		needles = []string{m.literal}
	}
	conds := make([]string, 0, 2*len(needles))
	args := make([]interface{}, 0, 2*len(needles))
	for _, n := range needles {
		pattern := containsPattern(n)
		conds = append(conds,
			lower(db, "v.title")+" LIKE ? ESCAPE '!'",
			lower(db, "v.abstract")+" LIKE ? ESCAPE '!'")
		args = append(args, pattern, pattern)
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

func (m *wordMatcher) matches(text string) bool {
	if m.literal != "" {
		return strings.Contains(strings.ToLower(text), m.literal)
	}
	for _, w := range splitWords(text) {
		for _, want := range m.words {
			if w == want {
				return true
			}
		}
	}
	return false
}

// score is 2 for a title match plus 1 for an abstract match.
func (m *wordMatcher) score(title, abstract string) float64 {
	var score float64
	if m.matches(title) {
		score += 2
	}
	if m.matches(abstract) {
		score++
	}
	return score
}
