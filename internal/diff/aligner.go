// Package diff provides a word-level diff between a learner's answer and a
// reference sentence, used to render quiz feedback.
package diff

import "strings"

// Op classifies a token in an alignment
type Op string

const (
	// OpCommon marks a token present in both sequences
	OpCommon Op = "common"
	// OpRemoved marks a token only the user wrote (should not be there)
	OpRemoved Op = "removed"
	// OpAdded marks a token only the reference has (the user omitted it)
	OpAdded Op = "added"
)

// Token is a single word of an alignment with its classification
type Token struct {
	Text string
	Op   Op
}

// Tokenize splits a sentence on whitespace, collapsing runs and dropping
// empty tokens
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// Align compares the user's sentence against the reference sentence and
// returns the tokens of both in order, each tagged common, removed or added.
// Comparison is case-insensitive; the returned tokens keep their original
// casing (user casing for common tokens).
//
// The backtrack resolves ties in favor of the reference-only branch, which
// pins down which of two equally short alignments is produced.
func Align(user, reference string) []Token {
	userWords := Tokenize(user)
	refWords := Tokenize(reference)

	// LCS length table over case-insensitive equality
	dp := make([][]int, len(userWords)+1)
	for i := range dp {
		dp[i] = make([]int, len(refWords)+1)
	}
	for i := 1; i <= len(userWords); i++ {
		for j := 1; j <= len(refWords); j++ {
			if strings.EqualFold(userWords[i-1], refWords[j-1]) {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] > dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	var out []Token
	i, j := len(userWords), len(refWords)
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && strings.EqualFold(userWords[i-1], refWords[j-1]):
			out = append(out, Token{Text: userWords[i-1], Op: OpCommon})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			out = append(out, Token{Text: refWords[j-1], Op: OpAdded})
			j--
		default:
			out = append(out, Token{Text: userWords[i-1], Op: OpRemoved})
			i--
		}
	}

	// Backtrack walked right-to-left
	for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
		out[l], out[r] = out[r], out[l]
	}
	return out
}
