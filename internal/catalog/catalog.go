package catalog

import (
	"encoding/csv"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/htlin222/gkahoot/internal/domain"
	"github.com/htlin222/gkahoot/internal/feed"
)

// Catalog CSV headers.
const (
	colIndex  = "index"
	colLink   = "link"
	colAnswer = "ans"
)

// Parse reads an uploaded catalog CSV into questions sorted ascending by
// index. A row is valid only when index parses as an integer and link and
// answer are non-empty; invalid rows are skipped. Index values need not be
// contiguous, sort order alone defines navigation order.
func Parse(r io.Reader) ([]domain.Question, error) {
	rows, err := feed.ParseRows(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, domain.ErrCatalogEmpty
	}

	questions := make([]domain.Question, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		idx, err := strconv.Atoi(strings.TrimSpace(row[colIndex]))
		link := strings.TrimSpace(row[colLink])
		ans := strings.ToUpper(strings.TrimSpace(row[colAnswer]))
		if err != nil || link == "" || ans == "" {
			skipped++
			continue
		}
		questions = append(questions, domain.Question{Index: idx, Link: link, Answer: ans})
	}
	if len(questions) == 0 {
		return nil, domain.ErrCatalogNoValidRows
	}
	if skipped > 0 {
		log.Printf("catalog: skipped %d invalid rows, kept %d", skipped, len(questions))
	}

	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Index < questions[j].Index
	})
	return questions, nil
}

// WriteTemplate emits the catalog header plus one example row, illustrating
// the upload format.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)
	records := [][]string{
		{colIndex, colLink, colAnswer},
		{"1", "https://docs.google.com/spreadsheets/d/example/export?format=csv", "A"},
	}
	for _, record := range records {
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
