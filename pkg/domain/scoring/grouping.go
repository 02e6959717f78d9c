package scoring

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskscope/pkg/domain/model"
)

// CategoryKeyDelimiter joins sorted category names into a group key
const CategoryKeyDelimiter = "|"

// CategorySet returns the trimmed, deduplicated and sorted category names
func CategorySet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	set := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		set = append(set, name)
	}
	sort.Strings(set)
	return set
}

// CategoryKey builds the canonical, order independent key of a category list
func CategoryKey(names []string) string {
	return strings.Join(CategorySet(names), CategoryKeyDelimiter)
}

// GroupID derives a display identifier from the category key. Groups of a
// single report get a 4 digit id, duplicate groups a 5 digit one.
func GroupID(key string, reportCount int) string {
	h := xxhash.Sum64String(key)
	if reportCount > 1 {
		return fmt.Sprintf("RG-%05d", h%100000)
	}
	return fmt.Sprintf("RG-%04d", h%10000)
}

// GroupByCategory clusters reports that carry an identical category set.
// Reports without any category are skipped. Groups are ordered by size,
// then by key; members keep their input order.
func GroupByCategory(reports []*model.RiskReport) []*model.RiskGroup {
	index := make(map[string]*model.RiskGroup)
	var groups []*model.RiskGroup

	for _, r := range reports {
		if r == nil {
			continue
		}
		set := CategorySet(r.CategoryNames())
		if len(set) == 0 {
			continue
		}
		key := strings.Join(set, CategoryKeyDelimiter)

		g, ok := index[key]
		if !ok {
			g = &model.RiskGroup{
				CategoryKey: key,
				Categories:  set,
			}
			index[key] = g
			groups = append(groups, g)
		}
		g.Members = append(g.Members, r)
		g.ReportCount++
	}

	for _, g := range groups {
		g.ID = GroupID(g.CategoryKey, g.ReportCount)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].ReportCount != groups[j].ReportCount {
			return groups[i].ReportCount > groups[j].ReportCount
		}
		return groups[i].CategoryKey < groups[j].CategoryKey
	})
	return groups
}

// ParseCategoryList decodes the stored JSON array of category names. An
// empty input is an empty list; anything that is not a JSON array of
// strings is rejected.
func ParseCategoryList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, goerr.Wrap(ErrInvalidInput, "category list is not a JSON array of strings", goerr.V("raw", raw), goerr.V("cause", err.Error()))
	}
	return names, nil
}
