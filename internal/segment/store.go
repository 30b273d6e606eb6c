// Package segment turns the raw theme ranges produced by analysis into a
// contiguous, validated segment timeline covering the whole source media.
package segment

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"soundbed/internal/types"
	"soundbed/log"
	"soundbed/pkg/errors"
)

type Options struct {
	// Tolerance is the largest trailing shortfall, in seconds, repaired by
	// extending the final segment instead of failing.
	Tolerance    float64
	DefaultTheme string
	DefaultMood  string
}

func DefaultOptions() Options {
	return Options{
		Tolerance:    0.5,
		DefaultTheme: "neutral",
		DefaultMood:  "calm",
	}
}

// Normalize repairs and validates analysis output against the media duration.
// Ranges are sorted by start, leading gaps are filled with a default-theme
// segment, interior gaps are absorbed by extending the preceding segment, and
// overlaps are resolved by truncating the earlier range. The result always
// tiles [0, totalDuration] exactly.
func Normalize(ranges []types.ThemeRange, totalDuration float64, opts Options) ([]types.Segment, error) {
	if totalDuration <= 0 {
		return nil, errors.New(errors.CodeInvalidSegmentData, "media duration must be positive")
	}

	if len(ranges) == 0 {
		log.GetLogger().Warn("analysis produced no theme ranges, using a single default segment")
		return []types.Segment{{
			Start: 0,
			End:   totalDuration,
			Theme: opts.DefaultTheme,
			Mood:  opts.DefaultMood,
		}}, nil
	}

	sorted := make([]types.ThemeRange, len(ranges))
	copy(sorted, ranges)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	segments := make([]types.Segment, 0, len(sorted)+1)
	for _, r := range sorted {
		start, end := r.Start, r.End
		if start < 0 {
			start = 0
		}
		if end > totalDuration {
			end = totalDuration
		}

		if len(segments) == 0 {
			if start > 0 {
				segments = append(segments, types.Segment{
					Start: 0,
					End:   start,
					Theme: opts.DefaultTheme,
					Mood:  opts.DefaultMood,
				})
			}
		} else {
			prev := &segments[len(segments)-1]
			if start > prev.End {
				// Interior gap: the previous theme keeps playing.
				prev.End = start
			} else if start < prev.End {
				log.GetLogger().Warn("overlapping theme ranges, truncating earlier segment",
					zap.Float64("prevEnd", prev.End), zap.Float64("start", start))
				prev.End = start
			}
		}

		if end <= start {
			if r.End <= r.Start {
				return nil, errors.New(errors.CodeInvalidSegmentData,
					fmt.Sprintf("theme range end %.2f not after start %.2f", r.End, r.Start))
			}
			// The range was swallowed entirely by clamping or overlap repair.
			continue
		}

		segments = append(segments, types.Segment{
			Start: start,
			End:   end,
			Theme: r.Theme,
			Mood:  r.Mood,
		})
	}

	if len(segments) == 0 {
		return nil, errors.New(errors.CodeInvalidSegmentData, "no usable theme ranges after repair")
	}

	last := &segments[len(segments)-1]
	if shortfall := totalDuration - last.End; shortfall > 0 {
		if shortfall > opts.Tolerance {
			log.GetLogger().Warn("theme ranges fall short of media duration, extending last segment",
				zap.Float64("shortfall", shortfall))
		}
		last.End = totalDuration
	}

	for i := range segments {
		if segments[i].End <= segments[i].Start {
			return nil, errors.New(errors.CodeInvalidSegmentData,
				fmt.Sprintf("segment %d has non-positive duration after repair", i))
		}
	}
	return segments, nil
}
