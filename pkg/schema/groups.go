package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Group markers come in two flavors: western ("Dwarf x 7", "Dwarf ×7") and
// Korean counter phrases ("난쟁이 7명", "강아지 두 마리"). Either way the
// marker is consumed during expansion, so expanding an already expanded name
// is a no-op.
var (
	westernGroupRX = regexp.MustCompile(`^(.*?)\s*[x×*]\s*(\d+)$`)
	koreanGroupRX  = regexp.MustCompile(`^(.*?)\s*(\d+|[가-힣]+)\s*(명|마리|개)$`)
)

// nativeNumerals maps Korean native counting words to their values. Both the
// determiner form (세) and the standalone form (셋) appear in practice.
var nativeNumerals = map[string]int{
	"한": 1, "하나": 1,
	"두": 2, "둘": 2,
	"세": 3, "셋": 3,
	"네": 4, "넷": 4,
	"다섯": 5, "여섯": 6, "일곱": 7, "여덟": 8, "아홉": 9, "열": 10,
}

// maxGroupSize caps expansion so a bad parse cannot flood the character list.
const maxGroupSize = 20

// ParseGroup splits a character name into its base name and group count.
// Names without a recognizable marker return (name, 1).
func ParseGroup(name string) (base string, count int) {
	name = strings.TrimSpace(name)

	if m := westernGroupRX.FindStringSubmatch(name); m != nil {
		n, err := strconv.Atoi(m[2])
		if err == nil && m[1] != "" {
			return strings.TrimSpace(m[1]), n
		}
	}

	if m := koreanGroupRX.FindStringSubmatch(name); m != nil && m[1] != "" {
		if n, err := strconv.Atoi(m[2]); err == nil {
			return strings.TrimSpace(m[1]), n
		}
		if n, ok := nativeNumerals[m[2]]; ok {
			return strings.TrimSpace(m[1]), n
		}
	}

	return name, 1
}

// ExpandGroup turns a group character into individually numbered instances:
// "Thief x 3" becomes Thief1, Thief2, Thief3, each keeping the original
// description with its ordinal appended. A character without a group marker
// is returned unchanged as a single-element slice.
func ExpandGroup(c Character) []Character {
	base, count := ParseGroup(c.Name)
	if count <= 1 || base == "" {
		return []Character{c}
	}
	if count > maxGroupSize {
		count = maxGroupSize
	}

	out := make([]Character, 0, count)
	for i := 1; i <= count; i++ {
		member := c
		member.Name = base + strconv.Itoa(i)
		if c.Description != "" {
			member.Description = fmt.Sprintf("%s (%d of %d)", c.Description, i, count)
		}
		out = append(out, member)
	}
	return out
}
