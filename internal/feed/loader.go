package feed

import (
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"

	"github.com/htlin222/gkahoot/internal/domain"
)

// RawRow is a header-keyed view of one CSV record.
type RawRow map[string]string

// Source fetches a question's submission feed by link. Implementations may
// cache; the base Loader does not.
type Source interface {
	Fetch(ctx context.Context, link string) ([]RawRow, error)
}

// Loader downloads CSV text over HTTP and parses it into raw rows. It does
// not retry and enforces no deadline of its own; callers bound latency via
// the context or the injected client.
type Loader struct {
	client *http.Client
}

func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{client: client}
}

func (l *Loader) Fetch(ctx context.Context, link string) ([]RawRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, &domain.FetchError{Link: link, Status: err.Error()}
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Link: link, Status: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.FetchError{Link: link, Status: resp.Status}
	}
	return ParseRows(resp.Body)
}

// ParseRows reads header-keyed rows from CSV text. Blank lines are skipped,
// ragged rows are tolerated, and a UTF-8 BOM on the header is stripped
// (spreadsheet exports routinely carry one).
func ParseRows(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, &domain.ParseError{Msg: err.Error()}
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var rows []RawRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &domain.ParseError{Msg: err.Error()}
		}
		row := make(RawRow, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
