package bip39

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// WordlistSize is the number of words in a BIP39 wordlist.
const WordlistSize = 2048

// Wordlist is an immutable, ordered list of 2048 unique words. A word's
// position is its index. Safe for concurrent use.
type Wordlist struct {
	words []string
	index map[string]int
}

// NewWordlist copies words into a Wordlist after checking there are exactly
// WordlistSize unique, non-empty entries.
func NewWordlist(words []string) (*Wordlist, error) {
	if len(words) != WordlistSize {
		return nil, fmt.Errorf("%w: %d words, want %d", ErrInvalidWordlist, len(words), WordlistSize)
	}
	wl := &Wordlist{
		words: make([]string, len(words)),
		index: make(map[string]int, len(words)),
	}
	for i, w := range words {
		if w == "" || strings.ContainsAny(w, " \t\r\n") {
			return nil, fmt.Errorf("%w: malformed word at line %d", ErrInvalidWordlist, i+1)
		}
		if prev, ok := wl.index[w]; ok {
			return nil, fmt.Errorf("%w: %q at lines %d and %d", ErrInvalidWordlist, w, prev+1, i+1)
		}
		wl.words[i] = w
		wl.index[w] = i
	}
	return wl, nil
}

// LoadWordlist reads one word per line. Surrounding whitespace is trimmed
// and blank lines are skipped.
func LoadWordlist(r io.Reader) (*Wordlist, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		w := strings.TrimSpace(scanner.Text())
		if w == "" {
			continue
		}
		words = append(words, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read wordlist: %w", err)
	}
	return NewWordlist(words)
}

// LoadWordlistFile loads a line-oriented wordlist from path.
func LoadWordlistFile(path string) (*Wordlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wordlist: %w", err)
	}
	defer f.Close()

	wl, err := LoadWordlist(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wl, nil
}

var english = sync.OnceValue(func() *Wordlist {
	wl, err := NewWordlist(wordlists.English)
	if err != nil {
		panic(fmt.Sprintf("bip39: built-in english wordlist: %v", err))
	}
	return wl
})

// EnglishWordlist returns the canonical BIP39 English wordlist. It is built
// on first use and shared afterwards.
func EnglishWordlist() *Wordlist {
	return english()
}

// Len returns the number of words.
func (w *Wordlist) Len() int {
	return len(w.words)
}

// Word returns the word at index i.
func (w *Wordlist) Word(i int) (string, error) {
	if i < 0 || i >= len(w.words) {
		return "", fmt.Errorf("%w: %d not in [0, %d]", ErrWordIndexOutOfRange, i, len(w.words)-1)
	}
	return w.words[i], nil
}

// Index returns the position of word, or false if it is not in the list.
func (w *Wordlist) Index(word string) (int, bool) {
	i, ok := w.index[word]
	return i, ok
}

// Contains reports whether word is in the list.
func (w *Wordlist) Contains(word string) bool {
	_, ok := w.index[word]
	return ok
}
