package models

import (
	"sort"
	"strings"

	dErrors "rosterid/pkg/domain-errors"
)

// OwnerSegment is a contiguous run of seasons under one owner. A nil
// EndSeason means the segment is still open.
type OwnerSegment struct {
	Owner       string `json:"owner"`
	StartSeason int    `json:"start_season"`
	EndSeason   *int   `json:"end_season,omitempty"`
}

// Covers reports whether season falls inside the segment.
func (s OwnerSegment) Covers(season int) bool {
	return season >= s.StartSeason && (s.EndSeason == nil || season <= *s.EndSeason)
}

func (s OwnerSegment) clone() OwnerSegment {
	if s.EndSeason != nil {
		end := *s.EndSeason
		s.EndSeason = &end
	}
	return s
}

func sameOwner(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// ExtendOwnerHistory records that owner held the team in season. A season
// after every known segment either extends the open segment of the same
// owner or closes it and opens a new one. Earlier seasons are merged in as
// single-season segments.
func ExtendOwnerHistory(history []OwnerSegment, owner string, season int) []OwnerSegment {
	seg := OwnerSegment{Owner: strings.TrimSpace(owner), StartSeason: season}
	if len(history) > 0 {
		last := history[len(history)-1]
		if season < last.StartSeason || (last.EndSeason != nil && season <= *last.EndSeason) {
			end := season
			seg.EndSeason = &end
		}
	}
	return MergeOwnerHistory(history, []OwnerSegment{seg})
}

// MergeOwnerHistory interleaves two timelines by start season. Contiguous or
// overlapping segments of the same owner coalesce; a segment is closed the
// season before a different owner's segment starts, and resumes after that
// segment when it ran past it. The result is sorted and non-overlapping, and
// only its last segment may be open.
func MergeOwnerHistory(a, b []OwnerSegment) []OwnerSegment {
	all := make([]OwnerSegment, 0, len(a)+len(b))
	for _, s := range a {
		all = append(all, s.clone())
	}
	for _, s := range b {
		all = append(all, s.clone())
	}
	if len(all) == 0 {
		return nil
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].StartSeason < all[j].StartSeason })

	out := make([]OwnerSegment, 0, len(all))
	for i := 0; i < len(all); i++ {
		s := all[i]
		if len(out) == 0 {
			out = append(out, s)
			continue
		}
		last := &out[len(out)-1]

		if sameOwner(last.Owner, s.Owner) {
			if last.EndSeason == nil || s.StartSeason <= *last.EndSeason+1 {
				last.EndSeason = laterEnd(last.EndSeason, s.EndSeason)
				continue
			}
			out = append(out, s)
			continue
		}

		if last.EndSeason == nil || *last.EndSeason >= s.StartSeason {
			if s.EndSeason != nil && (last.EndSeason == nil || *last.EndSeason > *s.EndSeason) {
				rest := last.clone()
				rest.StartSeason = *s.EndSeason + 1
				all = insertByStart(all, i+1, rest)
			}
			end := s.StartSeason - 1
			last.EndSeason = &end
		}
		if *last.EndSeason < last.StartSeason {
			out[len(out)-1] = s
			continue
		}
		out = append(out, s)
	}
	return out
}

// insertByStart inserts seg into the start-sorted tail all[from:], ahead of
// segments with the same start.
func insertByStart(all []OwnerSegment, from int, seg OwnerSegment) []OwnerSegment {
	at := from
	for at < len(all) && all[at].StartSeason < seg.StartSeason {
		at++
	}
	all = append(all, OwnerSegment{})
	copy(all[at+1:], all[at:])
	all[at] = seg
	return all
}

func laterEnd(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	if *b > *a {
		return b
	}
	return a
}

// ValidateOwnerHistory checks ordering, non-overlap and that only the last
// segment is open.
func ValidateOwnerHistory(history []OwnerSegment) error {
	for i, s := range history {
		if strings.TrimSpace(s.Owner) == "" {
			return dErrors.New(dErrors.CodeInvariantViolation, "owner segment without owner")
		}
		if s.EndSeason != nil && *s.EndSeason < s.StartSeason {
			return dErrors.New(dErrors.CodeInvariantViolation, "owner segment ends before it starts")
		}
		if i == 0 {
			continue
		}
		prev := history[i-1]
		if prev.EndSeason == nil {
			return dErrors.New(dErrors.CodeInvariantViolation, "only the latest owner segment may be open")
		}
		if s.StartSeason <= *prev.EndSeason {
			return dErrors.New(dErrors.CodeInvariantViolation, "owner segments overlap")
		}
	}
	return nil
}

// OwnerAt returns the owner for season, or "" if no segment covers it.
func OwnerAt(history []OwnerSegment, season int) string {
	for _, s := range history {
		if s.Covers(season) {
			return s.Owner
		}
	}
	return ""
}

// LatestOwner returns the owner of the most recent segment.
func LatestOwner(history []OwnerSegment) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Owner
}
