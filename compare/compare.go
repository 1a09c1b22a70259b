// Package compare classifies a reference asset list against a subject (an
// uploaded pack or a second manifest) under a regex exclusion-rule set.
package compare

import (
	"regexp"
	"sync"
)

// Result partitions the two inputs: matching and missing cover the reference
// side, unused covers subject files absent from the reference. TotalReference
// counts only reference files that survive exclusion filtering.
type Result struct {
	Matching       []string `json:"matching"`
	Missing        []string `json:"missing"`
	Unused         []string `json:"unused"`
	TotalReference int      `json:"totalReference"`
}

// Compare runs the three-way classification. A file is excluded when any rule
// matches it (unanchored, substring-style); excluded files count toward no
// bucket and not toward the total. The reference and subject scans are
// independent set-membership passes over immutable inputs and run
// concurrently.
func Compare(referenceFiles, subjectFiles []string, exclusionPatterns []string) (Result, error) {
	rules, err := compileRules(exclusionPatterns)
	if err != nil {
		return Result{}, err
	}

	referenceSet := toSet(referenceFiles)
	subjectSet := toSet(subjectFiles)

	var result Result
	var wg sync.WaitGroup
	wg.Add(2)

	// Reference side: matching / missing / total.
	go func() {
		defer wg.Done()
		for _, file := range referenceFiles {
			if excluded(file, rules) {
				continue
			}
			result.TotalReference++
			if _, ok := subjectSet[file]; ok {
				result.Matching = append(result.Matching, file)
			} else {
				result.Missing = append(result.Missing, file)
			}
		}
	}()

	// Subject side: unused.
	go func() {
		defer wg.Done()
		for _, file := range subjectFiles {
			if excluded(file, rules) {
				continue
			}
			if _, ok := referenceSet[file]; !ok {
				result.Unused = append(result.Unused, file)
			}
		}
	}()

	wg.Wait()
	return result, nil
}

func compileRules(patterns []string) ([]*regexp.Regexp, error) {
	rules := make([]*regexp.Regexp, 0, len(patterns))
	for _, pattern := range patterns {
		rule, err := regexp.Compile(pattern)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func excluded(file string, rules []*regexp.Regexp) bool {
	for _, rule := range rules {
		if rule.MatchString(file) {
			return true
		}
	}
	return false
}

func toSet(files []string) map[string]struct{} {
	set := make(map[string]struct{}, len(files))
	for _, file := range files {
		set[file] = struct{}{}
	}
	return set
}
