// Package quotes loads and rotates the quotes shown by the focus timer.
package quotes

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"
)

// RotateEvery is how long the timer shows one quote.
const RotateEvery = 30 * time.Second

// Quote is a line of text and its author.
type Quote struct {
	Text   string
	Author string
}

func (q Quote) String() string {
	if q.Author == "" {
		return fmt.Sprintf("%q", q.Text)
	}
	return fmt.Sprintf("%q - %s", q.Text, q.Author)
}

// Defaults are used when no quotes file exists.
var Defaults = []Quote{
	{Text: "The secret to getting ahead is getting started.", Author: "Mark Twain"},
	{Text: "Focus is a matter of deciding what things you're not going to do.", Author: "John Carmack"},
	{Text: "Deep work is the ability to focus without distraction on a cognitively demanding task.", Author: "Cal Newport"},
	{Text: "You are never too old to set another goal or to dream a new dream.", Author: "C.S. Lewis"},
	{Text: "The way to get started is to quit talking and begin doing.", Author: "Walt Disney"},
}

// Load reads one "text | author" quote per line. Blank lines and lines
// starting with # are skipped. A missing file yields Defaults.
func Load(path string) ([]Quote, error) {
	if path == "" {
		return Defaults, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Defaults, nil
		}
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only quotes file.
			_ = cerr
		}
	}()

	var out []Quote
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		text, author, _ := strings.Cut(line, "|")
		q := Quote{Text: strings.TrimSpace(text), Author: strings.TrimSpace(author)}
		if q.Text == "" {
			continue
		}
		out = append(out, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("quotes file %s is empty", path)
	}
	return out, nil
}

// Picker chooses quotes at random, never the same one twice in a row.
type Picker struct {
	quotes []Quote
	rnd    *rand.Rand
	last   int
}

// NewPicker returns a Picker seeded with the current time.
func NewPicker(quotes []Quote) *Picker {
	return NewPickerWithSource(quotes, rand.NewSource(time.Now().UnixNano()))
}

// NewPickerWithSource returns a Picker drawing from src.
func NewPickerWithSource(quotes []Quote, src rand.Source) *Picker {
	if len(quotes) == 0 {
		quotes = Defaults
	}
	return &Picker{quotes: quotes, rnd: rand.New(src), last: -1}
}

// Next returns a quote different from the previous one when possible.
func (p *Picker) Next() Quote {
	n := len(p.quotes)
	if n == 1 {
		p.last = 0
		return p.quotes[0]
	}
	idx := p.rnd.Intn(n)
	if idx == p.last {
		idx = (idx + 1 + p.rnd.Intn(n-1)) % n
	}
	p.last = idx
	return p.quotes[idx]
}
