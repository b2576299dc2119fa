// internal/scoring/scoring.go
package scoring

import "sort"

// Vote is a single guess on whether the round's statement is true.
type Vote struct {
	Voter string `json:"voter"`
	Guess bool   `json:"guess"`
}

// Result partitions the voters of one round and carries the points each earned.
// Voter slices keep the order in which votes were cast.
type Result struct {
	CorrectAnswer bool           `json:"correctAnswer"`
	CorrectVoters []string       `json:"correctVoters"`
	WrongVoters   []string       `json:"wrongVoters"`
	ScoreDeltas   map[string]int `json:"scoreDeltas"`
}

// Resolve scores a round: +1 for every voter whose guess matches correctAnswer, 0 otherwise.
// It has no side effects.
func Resolve(correctAnswer bool, votes []Vote) Result {
	res := Result{
		CorrectAnswer: correctAnswer,
		CorrectVoters: []string{},
		WrongVoters:   []string{},
		ScoreDeltas:   make(map[string]int, len(votes)),
	}
	for _, v := range votes {
		if v.Guess == correctAnswer {
			res.CorrectVoters = append(res.CorrectVoters, v.Voter)
			res.ScoreDeltas[v.Voter] = 1
		} else {
			res.WrongVoters = append(res.WrongVoters, v.Voter)
			res.ScoreDeltas[v.Voter] = 0
		}
	}
	return res
}

// Score is one player's running total.
type Score struct {
	Player string `json:"player"`
	Points int    `json:"points"`
}

// Standing is a Score with its 1-indexed position in a ranking.
type Standing struct {
	Position int    `json:"position"`
	Player   string `json:"player"`
	Points   int    `json:"points"`
}

// Rank orders scores by points descending. Ties keep their input order,
// and positions are assigned sequentially starting at 1.
func Rank(scores []Score) []Standing {
	sorted := make([]Score, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	out := make([]Standing, len(sorted))
	for i, s := range sorted {
		out[i] = Standing{Position: i + 1, Player: s.Player, Points: s.Points}
	}
	return out
}
