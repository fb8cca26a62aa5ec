package fuzzy

// PrefixScore scores candidate against query when query is a prefix of it.
//
// Each matched byte is worth 2 points. A full match doubles the score, an exact
// match doubles it again. A strict prefix is penalised by
// max(len(query), len(candidate)) - score, which can make the result zero or
// negative. Callers only count results greater than zero.
func PrefixScore(query, candidate string) int {
	if len(query) > len(candidate) {
		return NoMatch
	}

	score := 0
	i := 0
	for i < len(query) && query[i] == candidate[i] {
		score += 2
		i++
	}

	if i < len(query) {
		return NoMatch
	}

	score *= 2
	if len(candidate) == len(query) {
		return score * 2
	}
	return score - (max(len(query), len(candidate)) - score)
}
