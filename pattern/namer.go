package pattern

import (
	"regexp"
	"strings"
)

// Namer generates branch names following conventions.
type Namer struct {
	TypePrefix   string // Branch type prefix (e.g., "feature", "bugfix")
	IncludeTitle bool   // Whether to include a title slug in the name
	MaxLength    int    // Maximum branch name length
}

// DefaultNamer returns a namer with default settings.
func DefaultNamer() *Namer {
	return &Namer{
		TypePrefix:   "feature",
		IncludeTitle: true,
		MaxLength:    100,
	}
}

// ForTicket generates a branch name from a ticket ID and title.
// Example: "ENG-123", "Fix login flow" -> "feature/eng-123-fix-login-flow"
func (n *Namer) ForTicket(ticketID, title string) string {
	parts := []string{strings.ToLower(ticketID)}

	if n.IncludeTitle && title != "" {
		slug := Slugify(title)
		if len(slug) > 50 {
			slug = strings.TrimRight(slug[:50], "-")
		}
		parts = append(parts, slug)
	}

	branch := n.TypePrefix + "/" + strings.Join(parts, "-")

	if n.MaxLength > 0 && len(branch) > n.MaxLength {
		branch = branch[:n.MaxLength]
	}

	return CleanBranch(branch)
}

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9-]`)
	multiHyphen  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a lowercase hyphenated slug.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "_", "-")
	s = nonSlugChars.ReplaceAllString(s, "")
	s = multiHyphen.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CleanBranch collapses repeated hyphens and trims trailing hyphens from
// each path segment.
func CleanBranch(s string) string {
	s = multiHyphen.ReplaceAllString(s, "-")

	parts := strings.Split(s, "/")
	for i, part := range parts {
		parts[i] = strings.TrimRight(part, "-")
	}
	return strings.Join(parts, "/")
}
