package companies

import (
	"net/url"
	"sort"
	"strings"

	"github.com/koocao/reduzed-backend/pkg/db/models"
)

// Match scores. Name hits outrank website hits, which outrank category
// overlap, so a shortlist ordered by score reads naturally to an admin.
const (
	scoreNameMatch     = 4
	scoreWebsiteMatch  = 2
	scoreCategoryMatch = 1
)

// MatchCandidate pairs an existing company with its advisory match score
// against a pending registration. Candidates are never auto-merged; the
// admin decides.
type MatchCandidate struct {
	Company *models.Company
	Score   int
	Reasons []string
}

// scoreCandidate computes the advisory match score between a pending company
// and an existing admin-created one. Zero means no signal at all.
func scoreCandidate(pending, candidate *models.Company) MatchCandidate {
	result := MatchCandidate{Company: candidate}
	if pending == nil || candidate == nil {
		return result
	}

	if namesOverlap(pending.Name, candidate.Name) {
		result.Score += scoreNameMatch
		result.Reasons = append(result.Reasons, "name")
	}
	if hostsOverlap(pending.Website, candidate.Website) {
		result.Score += scoreWebsiteMatch
		result.Reasons = append(result.Reasons, "website")
	}
	if shared := sharedCategories(pending.Categories, candidate.Categories); shared > 0 {
		result.Score += scoreCategoryMatch
		result.Reasons = append(result.Reasons, "categories")
	}
	return result
}

// rankCandidates scores every candidate and returns the ones with any signal,
// best first. Ties break on name for a stable listing.
func rankCandidates(pending *models.Company, candidates []models.Company) []MatchCandidate {
	matched := make([]MatchCandidate, 0, len(candidates))
	for i := range candidates {
		scored := scoreCandidate(pending, &candidates[i])
		if scored.Score > 0 {
			matched = append(matched, scored)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Score != matched[j].Score {
			return matched[i].Score > matched[j].Score
		}
		return strings.ToLower(matched[i].Company.Name) < strings.ToLower(matched[j].Company.Name)
	})
	return matched
}

// namesOverlap reports whether either trimmed lowercased name contains the
// other. "FTMO" vs "FTMO Trading" matches; "TradeForge" vs "FTMO" does not.
func namesOverlap(a, b string) bool {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

func hostsOverlap(a, b *string) bool {
	ha := websiteHost(a)
	hb := websiteHost(b)
	if ha == "" || hb == "" {
		return false
	}
	return strings.Contains(ha, hb) || strings.Contains(hb, ha)
}

// websiteHost extracts a comparable host: scheme and www prefix stripped,
// lowercased. Bare domains without a scheme are accepted.
func websiteHost(website *string) string {
	if website == nil {
		return ""
	}
	raw := strings.ToLower(strings.TrimSpace(*website))
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return ""
	}
	return strings.TrimPrefix(parsed.Host, "www.")
}

func sharedCategories(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, cat := range a {
		set[strings.ToLower(strings.TrimSpace(cat))] = struct{}{}
	}
	shared := 0
	for _, cat := range b {
		if _, ok := set[strings.ToLower(strings.TrimSpace(cat))]; ok {
			shared++
		}
	}
	return shared
}
