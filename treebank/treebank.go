// Package treebank reads corpora of whitespace separated word/tag tokens,
// such as the Penn Treebank tagged text.
package treebank

import (
	"bufio"
	"io"
	"os"
	"strings"

	"parts.dev/tagger/pos"
)

// SentenceEndTag closes the current sentence. The token carrying it is not
// part of any sentence.
const SentenceEndTag = "."

const maxLineSize = 1024 * 1024

// Parse splits a corpus into sentences. Tokens are split at their last '/';
// tokens without a non-empty word and tag are ignored. Words are lower-cased.
// A trailing sentence that is not closed by a SentenceEndTag token is dropped.
func Parse(r io.Reader) ([]pos.Sentence, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var sentences []pos.Sentence
	var sentence pos.Sentence
	for scanner.Scan() {
		for _, part := range strings.Fields(scanner.Text()) {
			word, ok := splitToken(part)
			if !ok {
				continue
			}
			if word.Tag == SentenceEndTag {
				if len(sentence) > 0 {
					sentences = append(sentences, sentence)
				}
				sentence = nil
				continue
			}
			sentence = append(sentence, word)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return sentences, nil
}

func LoadFile(filePath string) ([]pos.Sentence, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

func splitToken(part string) (pos.TaggedWord, bool) {
	idx := strings.LastIndex(part, "/")
	if idx <= 0 || idx == len(part)-1 {
		return pos.TaggedWord{}, false
	}
	return pos.TaggedWord{
		Word: strings.ToLower(part[:idx]),
		Tag:  part[idx+1:],
	}, true
}
