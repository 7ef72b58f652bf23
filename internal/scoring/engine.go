package scoring

import (
	"sort"

	"github.com/htlin222/gkahoot/internal/domain"
)

// Policy controls the rank-decay point formula: the first correct responder
// earns BasePoints, each later rank loses Decay, and nobody credited drops
// below Floor.
type Policy struct {
	BasePoints int
	Decay      int
	Floor      int
}

func DefaultPolicy() Policy {
	return Policy{BasePoints: 130, Decay: 2, Floor: 100}
}

// Points returns the award for a 0-indexed rank.
func (p Policy) Points(rank int) int {
	pts := p.BasePoints - p.Decay*rank
	if pts < p.Floor {
		return p.Floor
	}
	return pts
}

// Engine scores one question's normalized submissions.
type Engine struct {
	policy Policy
}

func NewEngine(policy Policy) *Engine {
	return &Engine{policy: policy}
}

// Score filters, orders, deduplicates, and awards points for one question.
// An empty submission set is an error: a feed that parsed but yielded
// nothing usable is far more likely a wrong link than a silent quiz.
func (e *Engine) Score(question domain.Question, submissions []domain.Submission) (domain.Stats, error) {
	if len(submissions) == 0 {
		return domain.Stats{}, domain.ErrEmptyFeed
	}

	correct := make([]domain.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.Answer == question.Answer {
			correct = append(correct, sub)
		}
	}

	sort.SliceStable(correct, func(i, j int) bool {
		return instantBefore(correct[i].Timestamp, correct[j].Timestamp)
	})

	// Only a participant's first correct submission counts.
	seen := make(map[string]struct{}, len(correct))
	scores := make([]domain.Score, 0, len(correct))
	total := 0
	for _, sub := range correct {
		if _, dup := seen[sub.ParticipantID]; dup {
			continue
		}
		seen[sub.ParticipantID] = struct{}{}
		pts := e.policy.Points(len(scores))
		scores = append(scores, domain.Score{
			ParticipantID: sub.ParticipantID,
			Points:        pts,
			Timestamp:     sub.Timestamp,
		})
		total += pts
	}

	avg := 0.0
	if len(scores) > 0 {
		avg = float64(total) / float64(len(scores))
	}

	return domain.Stats{
		Scores:             scores,
		TotalSubmissions:   len(submissions),
		CorrectSubmissions: len(scores),
		AverageScore:       avg,
		Loaded:             true,
	}, nil
}
