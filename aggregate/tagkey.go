package aggregate

import (
	"encoding/json"
	"sort"
	"strings"
)

// TagPair is one (name, value) entry of a canonicalised TagKey.
type TagPair struct {
	Name  string
	Value string
}

// TagKey is a canonicalised, ordered tag-dimension identifier: the
// lexicographically-by-name sorted pairs of an input tag map. Two tag
// maps with the same set of pairs produce equal TagKeys regardless of
// input order. An empty tag map yields the empty TagKey, representing
// the ungrouped stream.
//
// TagKey is comparable and safe to use as a map key.
type TagKey string

// NewTagKey canonicalises a tag map into a TagKey.
func NewTagKey(tags map[string]string) TagKey {
	if len(tags) == 0 {
		return ""
	}
	pairs := make([]TagPair, 0, len(tags))
	for name, value := range tags {
		pairs = append(pairs, TagPair{Name: name, Value: value})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Name < pairs[j].Name })

	var b strings.Builder
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte('\x1f') // unit separator: cannot collide with tag content typed by a caller
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return TagKey(b.String())
}

// Pairs decodes the TagKey back into its ordered (name, value) pairs.
func (k TagKey) Pairs() []TagPair {
	if k == "" {
		return nil
	}
	entries := strings.Split(string(k), "\x1f")
	pairs := make([]TagPair, 0, len(entries))
	for _, entry := range entries {
		name, value, _ := strings.Cut(entry, "=")
		pairs = append(pairs, TagPair{Name: name, Value: value})
	}
	return pairs
}

// MarshalJSON renders the TagKey in its canonical wire form: a sorted
// list of [name, value] pairs.
func (k TagKey) MarshalJSON() ([]byte, error) {
	pairs := k.Pairs()
	wire := make([][2]string, len(pairs))
	for i, p := range pairs {
		wire[i] = [2]string{p.Name, p.Value}
	}
	return json.Marshal(wire)
}

// UnmarshalJSON reconstructs a TagKey from its canonical [name, value]
// pair-list wire form.
func (k *TagKey) UnmarshalJSON(data []byte) error {
	var wire [][2]string
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	tags := make(map[string]string, len(wire))
	for _, pair := range wire {
		tags[pair[0]] = pair[1]
	}
	*k = NewTagKey(tags)
	return nil
}
