package analysis

import (
	"sort"

	"github.com/govhotline/backend/internal/utils"
)

const (
	similarityThreshold = 0.3
	maxSimilar          = 5
)

// Candidate is a stored ticket considered for similarity.
type Candidate struct {
	ID       int64  `json:"id"`
	TicketNo string `json:"ticket_no"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

type Similar struct {
	Ticket     Candidate `json:"ticket"`
	Similarity float64   `json:"similarity"`
}

// FindSimilar ranks candidates by Jaccard similarity of their dictionary keyword
// sets. A candidate needs at least one shared keyword and a similarity above 0.3.
// A text without dictionary keywords therefore never matches anything.
func FindSimilar(content string, candidates []Candidate) []Similar {
	target := keywordSet(content)
	out := []Similar{}
	for _, c := range candidates {
		other := keywordSet(c.Content)
		inter := 0
		for k := range target {
			if _, ok := other[k]; ok {
				inter++
			}
		}
		if inter < 1 {
			continue
		}
		union := len(target) + len(other) - inter
		sim := float64(inter) / float64(union)
		if sim > similarityThreshold {
			out = append(out, Similar{Ticket: c, Similarity: utils.Round2(sim)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Similarity > out[j].Similarity
	})
	if len(out) > maxSimilar {
		out = out[:maxSimilar]
	}
	return out
}
