package scoring

import "strings"

// Union merges lists case-insensitively, keeping first-seen order and spelling.
func Union(lists ...[]string) []string {
	u := newUnion()
	for _, l := range lists {
		u.add(l...)
	}
	return u.items
}

type union struct {
	seen  map[string]struct{}
	items []string
}

func newUnion() *union {
	return &union{seen: map[string]struct{}{}, items: []string{}}
}

func (u *union) add(values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := u.seen[key]; ok {
			continue
		}
		u.seen[key] = struct{}{}
		u.items = append(u.items, v)
	}
}
