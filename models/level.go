package models

import "fmt"

// Level is a target audience for rewritten content.
type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
)

// Levels returns the difficulty levels in their fixed output order.
func Levels() []Level {
	return []Level{Beginner, Intermediate, Advanced}
}

// LevelNames returns Levels as plain strings, as written to document metadata.
func LevelNames() []string {
	levels := Levels()
	names := make([]string, len(levels))
	for i, l := range levels {
		names[i] = string(l)
	}
	return names
}

// ParseLevel converts a string into a Level.
func ParseLevel(s string) (Level, error) {
	for _, l := range Levels() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty level: %q", s)
}
