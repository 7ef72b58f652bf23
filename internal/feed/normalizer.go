package feed

import (
	"log"
	"strconv"
	"strings"

	"github.com/htlin222/gkahoot/internal/domain"
)

// Columns names the source fields of a feed row. The defaults match the
// Google Forms zh-TW export the reference deployment uses.
type Columns struct {
	Timestamp   string
	Participant string
	Answer      string
}

func DefaultColumns() Columns {
	return Columns{
		Timestamp:   "時間戳記",
		Participant: "您的員工編號",
		Answer:      "本題答案",
	}
}

// Normalizer validates raw rows into typed submissions.
type Normalizer struct {
	cols Columns
}

func NewNormalizer(cols Columns) *Normalizer {
	return &Normalizer{cols: cols}
}

// Normalize coerces one raw row. ok is false when any required field is
// missing; such rows are skipped, not treated as errors.
func (n *Normalizer) Normalize(row RawRow) (domain.Submission, bool) {
	ts := strings.TrimSpace(row[n.cols.Timestamp])
	id := strings.TrimSpace(row[n.cols.Participant])
	ans := strings.TrimSpace(row[n.cols.Answer])
	if ts == "" || id == "" || ans == "" {
		return domain.Submission{}, false
	}
	return domain.Submission{
		Timestamp:     ts,
		ParticipantID: canonicalID(id),
		Answer:        strings.ToUpper(ans),
	}, true
}

// NormalizeAll filters a raw feed down to usable submissions, logging the
// drop count so silently skipped rows stay observable.
func (n *Normalizer) NormalizeAll(rows []RawRow) []domain.Submission {
	subs := make([]domain.Submission, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		sub, ok := n.Normalize(row)
		if !ok {
			dropped++
			continue
		}
		subs = append(subs, sub)
	}
	if dropped > 0 {
		log.Printf("feed: skipped %d malformed rows, %d usable", dropped, len(subs))
	}
	return subs
}

// canonicalID renders integer-like ids through an integer parse so "007"
// and "7" key the same participant; everything else keys as-is.
func canonicalID(raw string) string {
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return strconv.FormatInt(v, 10)
	}
	return raw
}
