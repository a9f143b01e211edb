package corpus

import (
	"fmt"
	"strings"
)

// Level is the difficulty tier of a factlet. Tiers are ordered; Level1 is the
// lowest.
type Level int

const (
	Level1 Level = iota + 1
	Level2
	Level3
)

// AllLevels returns every tier, lowest first.
func AllLevels() []Level {
	return []Level{Level1, Level2, Level3}
}

// LowestLevel is reinserted whenever a level selection would become empty.
func LowestLevel() Level { return Level1 }

func (l Level) Valid() bool { return l >= Level1 && l <= Level3 }

// Tag is the persisted form ("level1").
func (l Level) Tag() string { return fmt.Sprintf("level%d", int(l)) }

func (l Level) String() string { return l.Tag() }

// DisplayName is the label shown to users.
func (l Level) DisplayName() string {
	switch l {
	case Level1:
		return "Easy"
	case Level2:
		return "Medium"
	case Level3:
		return "Hard"
	default:
		return l.Tag()
	}
}

// ParseLevel accepts a tag ("level2"), a display name ("medium") or a bare
// digit ("2").
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, l := range AllLevels() {
		if s == l.Tag() || s == strings.ToLower(l.DisplayName()) || s == fmt.Sprint(int(l)) {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q (valid: level1-level3, easy, medium, hard)", s)
}

// LevelSet is an immutable set of levels.
type LevelSet uint8

// AllLevelSet contains every tier.
func AllLevelSet() LevelSet { return NewLevelSet(AllLevels()...) }

func NewLevelSet(levels ...Level) LevelSet {
	var s LevelSet
	for _, l := range levels {
		s = s.With(l)
	}
	return s
}

func (s LevelSet) Has(l Level) bool {
	return l.Valid() && s&(1<<uint(l)) != 0
}

func (s LevelSet) With(l Level) LevelSet {
	if !l.Valid() {
		return s
	}
	return s | 1<<uint(l)
}

func (s LevelSet) Without(l Level) LevelSet {
	if !l.Valid() {
		return s
	}
	return s &^ (1 << uint(l))
}

func (s LevelSet) Empty() bool { return s.Len() == 0 }

func (s LevelSet) Len() int {
	n := 0
	for _, l := range AllLevels() {
		if s.Has(l) {
			n++
		}
	}
	return n
}

// Levels returns the members lowest first.
func (s LevelSet) Levels() []Level {
	var out []Level
	for _, l := range AllLevels() {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

// Tags returns the persisted tags of the members, lowest first.
func (s LevelSet) Tags() []string {
	out := make([]string, 0, s.Len())
	for _, l := range s.Levels() {
		out = append(out, l.Tag())
	}
	return out
}

// LevelsFor makes a flat set usable as a level selector: every category gets
// the same levels.
func (s LevelSet) LevelsFor(Category) LevelSet { return s }

func (s LevelSet) String() string {
	return "{" + strings.Join(s.Tags(), ",") + "}"
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(l.Tag()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
