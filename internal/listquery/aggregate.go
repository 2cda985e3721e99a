package listquery

import (
	"fmt"
	"math"
	"strings"
)

// UnknownBucket collects records whose grouping field is missing, so group
// counts always add up to the filtered total.
const UnknownBucket = "unknown"

// BucketKey maps a raw grouping value to its bucket.
func BucketKey(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return UnknownBucket
	}
	return raw
}

// Percent returns part/total*100 rounded half up; 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	// integer form of floor(part*100/total + 0.5)
	return (200*part + total) / (2 * total)
}

// AttendanceRate formats the present share as a whole percentage, e.g. "70%".
func AttendanceRate(present, total int) string {
	return fmt.Sprintf("%d%%", Percent(present, total))
}

// Sums holds the point totals of one subject's graded submissions.
type Sums struct {
	Earned float64
	Total  float64
}

// GradeAverage is sum(earned)/sum(total)*100 rounded half up, 0 without points.
func GradeAverage(s Sums) int {
	if s.Total <= 0 {
		return 0
	}
	return int(math.Floor(s.Earned/s.Total*100 + 0.5))
}

// GradeAverages applies GradeAverage per subject. Callers pass sums of graded
// submissions only; ungraded work must not reach either side of the ratio.
func GradeAverages(sums map[string]Sums) map[string]int {
	out := make(map[string]int, len(sums))
	for subject, s := range sums {
		out[BucketKey(subject)] = GradeAverage(s)
	}
	return out
}

// Breakdown copies counts, merging empty keys into UnknownBucket and dropping
// zero counts. A missing key means zero.
func Breakdown(counts map[string]int) map[string]int {
	out := make(map[string]int, len(counts))
	for key, n := range counts {
		if n <= 0 {
			continue
		}
		out[BucketKey(key)] += n
	}
	return out
}

// SumCounts totals a breakdown.
func SumCounts(counts map[string]int) int {
	total := 0
	for _, n := range counts {
		total += n
	}
	return total
}

// StatusBreakdown is Breakdown with every known status reported, zero when
// absent from counts.
func StatusBreakdown(counts map[string]int, known ...string) map[string]int {
	out := Breakdown(counts)
	for _, status := range known {
		if _, ok := out[status]; !ok {
			out[status] = 0
		}
	}
	return out
}
