package mpatch

// LocateConfig tunes the fuzzy relocation of a hunk inside a drifted target.
// The zero value picks the documented defaults.
type LocateConfig struct {
	// Window bounds how far (in lines) the scan wanders from the search
	// hint in each direction. Zero means proportional to the target size.
	Window int
	// MinMatch is the fraction of a hunk's expected lines that must match
	// for a candidate position to be accepted. Zero means 0.5.
	MinMatch float64
	// MaxSlack is how many unmatched target lines may sit between two
	// consecutive matched lines, tolerating insertions inside the hunk
	// region. Zero means 3.
	MaxSlack int
}

const (
	defaultMinMatch = 0.5
	defaultMaxSlack = 3
	minWindow       = 32
)

func (c LocateConfig) windowFor(targetLen int) int {
	if c.Window > 0 {
		return c.Window
	}
	if w := targetLen / 4; w > minWindow {
		return w
	}
	return minWindow
}

func (c LocateConfig) minMatch() float64 {
	if c.MinMatch > 0 {
		return c.MinMatch
	}
	return defaultMinMatch
}

func (c LocateConfig) maxSlack() int {
	if c.MaxSlack > 0 {
		return c.MaxSlack
	}
	return defaultMaxSlack
}

// MatchResult is the locator's verdict for one hunk against one target: the
// resolved anchor position, a confidence score in (0,1], and the line drift
// relative to the hunk's recorded position. It is consumed immediately by the
// splicing step and never persisted.
type MatchResult struct {
	Anchor int
	Score  float64
	Drift  int

	// lineMap maps each old-side hunk line to the target line it matched,
	// -1 for lines that have no counterpart.
	lineMap []int
}

// locateHunk scans outward from hint, scoring candidate positions by how many
// of the hunk's expected lines can be matched in order, and returns the best
// candidate meeting the threshold. Ties go to the candidate closest to the
// hint (the one before the hint on exact ties). Reports ok=false when nothing
// inside the window scores above the threshold.
func locateHunk(h *Hunk, target *LineBuffer, hint int, cfg LocateConfig) (MatchResult, bool) {
	tlen := target.Len()
	if hint < 0 {
		hint = 0
	}
	if hint > tlen {
		hint = tlen
	}

	expected := h.oldTexts()
	if len(expected) == 0 {
		// Nothing to anchor on; trust the hint.
		return MatchResult{Anchor: hint, Score: 1, Drift: hint - h.OldStart}, true
	}

	window := cfg.windowFor(tlen)
	slack := cfg.maxSlack()

	best := MatchResult{Score: -1}
	found := false
	for offset := 0; offset <= window; offset++ {
		starts := [2]int{hint - offset, hint + offset}
		for i, start := range starts {
			if offset == 0 && i == 1 {
				continue
			}
			if start < 0 || start >= tlen {
				continue
			}
			res, ok := alignAt(expected, target, start, slack)
			if ok && res.Score > best.Score {
				best = res
				found = true
			}
		}
		// A perfect score cannot be beaten by a farther candidate.
		if found && best.Score == 1 {
			break
		}
	}

	if !found || best.Score < cfg.minMatch() {
		debugf("hunk at %d not located near hint %d (window %d)", h.OldStart, hint, window)
		return MatchResult{}, false
	}
	best.Drift = best.Anchor - h.OldStart
	debugf("hunk at %d located at %d (score %.2f, drift %d)", h.OldStart, best.Anchor, best.Score, best.Drift)
	return best, true
}

// alignAt greedily matches the expected lines, in order, against the target
// starting at start. Up to slack unmatched target lines may be skipped before
// each match, so lines inserted inside the hunk region cost score only when
// they push context out of reach. Reordered or deleted context lines simply
// stay unmatched.
func alignAt(expected []string, target *LineBuffer, start, slack int) (MatchResult, bool) {
	tlen := target.Len()
	lineMap := make([]int, len(expected))
	matched := 0
	anchor := -1
	ti := start
	for i, want := range expected {
		lineMap[i] = -1
		limit := ti + slack
		if limit >= tlen {
			limit = tlen - 1
		}
		for tj := ti; tj <= limit; tj++ {
			if target.Text(tj) == want {
				lineMap[i] = tj
				matched++
				if anchor == -1 {
					anchor = tj
				}
				ti = tj + 1
				break
			}
		}
	}
	if matched == 0 {
		return MatchResult{}, false
	}
	return MatchResult{
		Anchor:  anchor,
		Score:   float64(matched) / float64(len(expected)),
		lineMap: lineMap,
	}, true
}
