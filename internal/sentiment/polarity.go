package sentiment

// Polarity is the mean polarity of the sentiment words in text, each scaled to
// [-1, 1]. A negation directly before a word multiplies it by -0.5, and an
// intensifier directly before it multiplies it by 1.3. Text without sentiment
// words has polarity 0. Words, intensifiers and negations come from the same
// lexicon as Compound.
func Polarity(text string) float64 {
	sia := vader()
	words := tokenize(text)

	var total float64
	var n int
	for i, w := range words {
		v, ok := sia.Lexicon[w]
		if !ok {
			continue
		}
		p := v / 4

		if i > 0 {
			prev := words[i-1]
			if b, ok := sia.Constants.BoosterDict[prev]; ok && b > 0 {
				p *= 1.3
			}
			if isNegation(prev) {
				p *= -0.5
			}
		}

		total += clamp(p, -1, 1)
		n++
	}

	if n == 0 {
		return 0
	}
	return clamp(total/float64(n), -1, 1)
}

func isNegation(word string) bool {
	for _, n := range vader().Constants.NegateList {
		if n == word {
			return true
		}
	}
	return false
}
