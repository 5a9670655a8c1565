package source

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Deck files are markdown with Q:/A:/C: prefixed blocks. A block runs
// until the next prefix or a "---" separator; a new Q: always starts a
// new card.
const (
	questionPrefix = "Q:"
	answerPrefix   = "A:"
	contextPrefix  = "C:"
	cardSeparator  = "---"
)

// ParsedCard is one card lifted out of a deck file, before hashing and
// deduplication.
type ParsedCard struct {
	Question string
	Answer   string
	Context  string
}

type parseState int

const (
	seeking parseState = iota
	inQuestion
	inAnswer
	inContext
)

// ParseDeckFile parses the deck at path.
func ParseDeckFile(path string) ([]ParsedCard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseDeck(f)
}

// ParseDeck extracts all cards from r. Cards without a question are
// dropped; a card without an answer is kept so the parse error surfaces
// as a visible half-empty card rather than silent loss.
func ParseDeck(r io.Reader) ([]ParsedCard, error) {
	scanner := bufio.NewScanner(r)

	var cards []ParsedCard
	var current ParsedCard
	var block []string
	state := seeking

	flushBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.Join(block, "\n")
		switch state {
		case inQuestion:
			current.Question = content
		case inAnswer:
			current.Answer = content
		case inContext:
			current.Context = content
		}
		block = nil
	}

	finishCard := func() {
		flushBlock()
		if current.Question != "" {
			cards = append(cards, current)
		}
		current = ParsedCard{}
		state = seeking
	}

	startBlock := func(line, prefix string, next parseState) {
		flushBlock()
		state = next
		content := strings.TrimPrefix(line, prefix)
		content = strings.TrimPrefix(content, " ")
		block = append(block, content)
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == cardSeparator:
			finishCard()
		case strings.HasPrefix(line, questionPrefix):
			if state != seeking {
				finishCard()
			}
			startBlock(line, questionPrefix, inQuestion)
		case strings.HasPrefix(line, answerPrefix):
			startBlock(line, answerPrefix, inAnswer)
		case strings.HasPrefix(line, contextPrefix):
			startBlock(line, contextPrefix, inContext)
		case state != seeking:
			block = append(block, line)
		}
	}
	finishCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}
