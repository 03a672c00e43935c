package catalog

import (
	"strings"
	"time"
)

type Exercise struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	VideoURL    *string   `json:"videoUrl,omitempty"`
	Aliases     []string  `json:"aliases"`
	CreatedAt   time.Time `json:"createdAt"`
}

type ListParams struct {
	Page int
	Size int
}

type ListResponse struct {
	Exercises []Exercise `json:"exercises"`
	Total     int        `json:"total"`
}

// normalize trims the exercise fields in place. Aliases are trimmed, empty ones dropped and
// duplicates removed case-insensitively, keeping the first spelling. An alias equal to the
// name is dropped too.
func (e *Exercise) normalize() {
	e.Name = strings.TrimSpace(e.Name)
	e.Description = trimOptional(e.Description)
	e.VideoURL = trimOptional(e.VideoURL)

	seen := map[string]bool{strings.ToLower(e.Name): true}
	aliases := make([]string, 0, len(e.Aliases))
	for _, a := range e.Aliases {
		a = strings.TrimSpace(a)
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		aliases = append(aliases, a)
	}
	e.Aliases = aliases
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
