package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// OldestSupportedRelease is the cutoff before which asset archives are not
// reliably available (anything older than 1.5.2).
var OldestSupportedRelease = time.Date(2013, 4, 24, 15, 45, 0, 0, time.UTC)

// LimitVersions applies the highest-patch limiting policy: versions released
// before the cutoff are discarded, and unless bypassLimit is set, only the
// highest MAJOR.MINOR.PATCH of each MAJOR.MINOR line is kept, with the
// exception of the latest snapshot / pre-release / RC. The result is always
// sorted by release time, newest first.
//
// The letter/latest heuristic is kept exactly as-is: upstream version naming
// (April Fools' snapshots in particular) interacts with it unpredictably, and
// changing it changes which versions surface.
func LimitVersions(versions []Version, bypassLimit bool) []Version {
	tempList := make([]Version, 0, len(versions))
	for _, v := range versions {
		if v.ReleaseTime.After(OldestSupportedRelease) {
			tempList = append(tempList, v)
		}
	}
	sortByReleaseTimeDesc(tempList)

	if bypassLimit {
		return tempList
	}

	newList := make([]Version, 0, len(tempList))
	for _, v := range tempList {
		split := strings.Split(v.ID, ".")
		switch {
		case (len(split) == 1 || containsLetter(v.ID)) && !v.ReleaseTime.Before(tempList[0].ReleaseTime):
			// Latest snapshot, if it is newer than the latest full release.
			newList = append(newList, v)
		case v.Edition == EditionJava && strings.Contains(v.ID, ".") && !strings.Contains(v.ID, "-"):
			verSplit, err := parseDotted(split)
			if err != nil {
				log.WithField("version", v.ID).Warning("failed to parse version; skipping from highest-patch filtering")
				continue
			}
			prefix := fmt.Sprintf("%d.%d", verSplit[0], verSplit[1])
			if !containsReleaseWithPrefix(newList, prefix) {
				newList = append(newList, v)
			}
		}
	}
	return newList
}

func parseDotted(split []string) ([]int, error) {
	out := make([]int, 0, len(split))
	for _, s := range split {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) < 2 {
		return nil, fmt.Errorf("expected at least two version components, got %d", len(out))
	}
	return out, nil
}

func containsReleaseWithPrefix(versions []Version, prefix string) bool {
	for _, v := range versions {
		if v.Type == TypeRelease && strings.HasPrefix(v.ID, prefix) {
			return true
		}
	}
	return false
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func sortByReleaseTimeDesc(versions []Version) {
	sort.SliceStable(versions, func(i, j int) bool {
		return versions[i].ReleaseTime.After(versions[j].ReleaseTime)
	})
}
