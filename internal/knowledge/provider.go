// Package knowledge assembles per-organization reference context for the
// system prompt.
package knowledge

import (
	"context"
	"strings"

	"github.com/gymleadhub/atlas-agent/internal/store"
)

// Defaults for the context budget.
const (
	DefaultMaxChars = 6000
	maxDocuments    = 10
)

// Provider loads an organization's active documents and renders them into a
// bounded prompt section.
type Provider struct {
	DB       *store.DB
	MaxChars int
}

// NewProvider creates a provider with the default character budget.
func NewProvider(db *store.DB) *Provider {
	return &Provider{DB: db, MaxChars: DefaultMaxChars}
}

// Context returns the knowledge section for the organization, or "" when no
// active documents exist. The output never exceeds MaxChars.
func (p *Provider) Context(ctx context.Context, orgID string) (string, error) {
	docs, err := p.DB.ActiveKnowledgeDocuments(ctx, orgID, maxDocuments)
	if err != nil {
		return "", err
	}
	if len(docs) == 0 {
		return "", nil
	}

	budget := p.MaxChars
	if budget <= 0 {
		budget = DefaultMaxChars
	}

	var b strings.Builder
	b.WriteString("REFERENCE INFORMATION:\n")
	for _, doc := range docs {
		entry := "\n## " + doc.Title + "\n" + doc.Content + "\n"
		if b.Len()+len(entry) > budget {
			remaining := budget - b.Len()
			if remaining > len("\n## "+doc.Title+"\n") {
				b.WriteString(truncateWithEllipsis(entry, remaining))
			}
			break
		}
		b.WriteString(entry)
	}
	return b.String(), nil
}

func truncateWithEllipsis(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
