// Package entities contains core business entities.
// These are pure domain objects with no knowledge of storage, models or transport.
package entities

import (
	"slices"
	"sort"
	"strings"
	"time"
)

// DisplayTimeLayout is the layout used when a turn timestamp is shown to a person.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// Intent is a labeled category of user meaning with example phrasings and candidate replies.
type Intent struct {
	Tag       string   `json:"tag" yaml:"tag"`
	Patterns  []string `json:"patterns" yaml:"patterns"`
	Responses []string `json:"responses" yaml:"responses"`
}

// TrainingExample pairs one pattern with the tag of the intent it belongs to.
type TrainingExample struct {
	Text  string
	Label string
}

// Corpus is the validated, immutable set of intents the bot is trained on.
// Build it with NewCorpus; the zero value is an empty corpus.
type Corpus struct {
	intents []Intent
	byTag   map[string]int
}

// NewCorpus validates intents and returns a Corpus.
// It fails with a *ConfigError on an empty list, blank tag, duplicate tag,
// or an intent with no patterns or responses (or a blank one).
func NewCorpus(source string, intents []Intent) (*Corpus, error) {
	if len(intents) == 0 {
		return nil, NewConfigError(source, "corpus contains no intents", nil)
	}

	c := &Corpus{
		intents: make([]Intent, 0, len(intents)),
		byTag:   make(map[string]int, len(intents)),
	}
	for i, in := range intents {
		if isBlank(in.Tag) {
			return nil, NewConfigErrorf(source, "intent #%d: tag is empty", i)
		}
		if _, dup := c.byTag[in.Tag]; dup {
			return nil, NewConfigErrorf(source, "intent %q: duplicate tag", in.Tag)
		}
		if len(in.Patterns) == 0 {
			return nil, NewConfigErrorf(source, "intent %q: no patterns", in.Tag)
		}
		if len(in.Responses) == 0 {
			return nil, NewConfigErrorf(source, "intent %q: no responses", in.Tag)
		}
		for j, p := range in.Patterns {
			if isBlank(p) {
				return nil, NewConfigErrorf(source, "intent %q: pattern #%d is empty", in.Tag, j)
			}
		}
		for j, r := range in.Responses {
			if isBlank(r) {
				return nil, NewConfigErrorf(source, "intent %q: response #%d is empty", in.Tag, j)
			}
		}

		c.byTag[in.Tag] = len(c.intents)
		c.intents = append(c.intents, Intent{
			Tag:       in.Tag,
			Patterns:  append([]string(nil), in.Patterns...),
			Responses: append([]string(nil), in.Responses...),
		})
	}
	return c, nil
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// Lookup returns a copy of the intent with the given tag.
func (c *Corpus) Lookup(tag string) (Intent, bool) {
	if c == nil {
		return Intent{}, false
	}
	i, ok := c.byTag[tag]
	if !ok {
		return Intent{}, false
	}
	return c.intents[i].clone(), true
}

// Intents returns copies of the intents in file order.
func (c *Corpus) Intents() []Intent {
	if c == nil {
		return nil
	}
	out := make([]Intent, len(c.intents))
	for i, in := range c.intents {
		out[i] = in.clone()
	}
	return out
}

func (in Intent) clone() Intent {
	in.Patterns = slices.Clone(in.Patterns)
	in.Responses = slices.Clone(in.Responses)
	return in
}

// Len returns the number of intents.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.intents)
}

// Tags returns every tag in lexicographic order.
func (c *Corpus) Tags() []string {
	if c == nil {
		return nil
	}
	tags := make([]string, 0, len(c.intents))
	for _, in := range c.intents {
		tags = append(tags, in.Tag)
	}
	sort.Strings(tags)
	return tags
}

// TrainingExamples pairs every pattern with its intent's tag, in corpus order.
func (c *Corpus) TrainingExamples() []TrainingExample {
	if c == nil {
		return nil
	}
	var out []TrainingExample
	for _, in := range c.intents {
		for _, p := range in.Patterns {
			out = append(out, TrainingExample{Text: p, Label: in.Tag})
		}
	}
	return out
}

// ChatTurn is one user utterance and the bot's reply.
type ChatTurn struct {
	UserText  string    `json:"user_text"`
	BotText   string    `json:"bot_text"`
	Timestamp time.Time `json:"time"`
}

// DisplayTime formats the turn timestamp for people.
func (t ChatTurn) DisplayTime() string {
	return t.Timestamp.Format(DisplayTimeLayout)
}

// Order selects how a history listing is sorted.
type Order int

const (
	Chronological Order = iota
	ReverseChronological
)

// String returns the wire name of the order.
func (o Order) String() string {
	if o == ReverseChronological {
		return "reverse"
	}
	return "chronological"
}

// ParseOrder maps a wire name to an Order. Empty means chronological.
func ParseOrder(s string) (Order, bool) {
	switch s {
	case "", "chronological", "asc", "oldest":
		return Chronological, true
	case "reverse", "reverse-chronological", "desc", "newest":
		return ReverseChronological, true
	}
	return Chronological, false
}

// Prediction is the classifier's answer for one utterance.
type Prediction struct {
	Tag         string  `json:"tag"`
	Probability float64 `json:"probability"`
}
