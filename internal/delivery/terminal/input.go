package terminal

import (
	"strconv"
	"strings"

	"github.com/aliskhannn/itpass-trainer/internal/domain/entities"
)

type commandKind int

const (
	cmdAnswer commandKind = iota
	cmdNext
	cmdPrev
	cmdFinish
	cmdQuit
	cmdHelp
	cmdEmpty
)

// matchThreshold is the similarity a typed answer needs to select a choice by text.
const matchThreshold = 0.8

// Exam sheets label choices ア, イ, ウ, エ.
var kanaLabels = []string{"ア", "イ", "ウ", "エ"}

func parseCommand(line string) commandKind {
	switch normalize(line) {
	case "":
		return cmdEmpty
	case "n", "next":
		return cmdNext
	case "p", "prev", "previous", "back":
		return cmdPrev
	case "f", "finish":
		return cmdFinish
	case "q", "quit", "exit":
		return cmdQuit
	case "h", "help", "?":
		return cmdHelp
	default:
		return cmdAnswer
	}
}

// matchChoice resolves user input to a choice of q: a position (1-4), a letter
// (a-d), a kana label or text close enough to one choice.
func matchChoice(q *entities.Question, input string) *entities.Choice {
	in := normalize(input)
	if in == "" {
		return nil
	}

	if pos, err := strconv.Atoi(in); err == nil {
		return choiceAt(q, pos)
	}
	if len(in) == 1 && in[0] >= 'a' && in[0] <= 'd' {
		return choiceAt(q, int(in[0]-'a')+1)
	}
	for i, label := range kanaLabels {
		if in == label {
			return choiceAt(q, i+1)
		}
	}

	var (
		best      *entities.Choice
		bestScore float64
	)
	for i := range q.Choices {
		score := similarity(in, normalize(q.Choices[i].Text))
		if score > bestScore {
			best, bestScore = &q.Choices[i], score
		}
	}
	if bestScore < matchThreshold {
		return nil
	}
	return best
}

func choiceAt(q *entities.Question, pos int) *entities.Choice {
	for i := range q.Choices {
		if q.Choices[i].Position == pos {
			return &q.Choices[i]
		}
	}
	return nil
}

// normalize lowercases, trims and collapses whitespace. strings.Fields also
// splits on the full-width space of Japanese input methods.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// similarity is 1 minus the Levenshtein distance relative to the longer string.
func similarity(s1, s2 string) float64 {
	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(s1, s2))/float64(maxLen)
}

func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)

	rows := len(r1) + 1
	cols := len(r2) + 1

	// Two rows instead of the full matrix.
	prev := make([]int, cols)
	curr := make([]int, cols)

	for j := 0; j < cols; j++ {
		prev[j] = j
	}

	for i := 1; i < rows; i++ {
		curr[0] = i

		for j := 1; j < cols; j++ {
			cost := 1
			if r1[i-1] == r2[j-1] {
				cost = 0
			}

			curr[j] = min(
				curr[j-1]+1,    // insertion
				prev[j]+1,      // deletion
				prev[j-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[cols-1]
}
