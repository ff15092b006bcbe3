package holdings

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LabelFormat is the format used to display row dates. The row source feeds
// day-first dates, so labels stay day-first too.
const LabelFormat = "02/01/2006"

// serialEpoch is the day-zero of spreadsheet serial dates (1899-12-30, the
// Excel/LibreOffice convention that absorbs the 1900 leap-year quirk).
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// Date represents a date with day-level granularity.
//
// The zero value is the "unknown date" sentinel: rows whose date field could
// not be parsed carry it. It sorts before any real date and renders as an
// empty label.
type Date struct {
	y int        // year
	m time.Month // month
	d int        // day
}

// NewDate returns a normalized Date for the given year, month, and day.
func NewDate(year int, month time.Month, day int) Date {
	d := Date{year, month, day}
	d.y, d.m, d.d = d.time().Date()
	return d
}

// Year returns the year of the date.
func (d Date) Year() int { return d.y }

// Month returns the month of the date.
func (d Date) Month() time.Month { return d.m }

// Day returns the day of the month.
func (d Date) Day() int { return d.d }

// IsZero returns true if the date is the unknown sentinel.
func (d Date) IsZero() bool { return d.y == 0 && d.m == 0 && d.d == 0 }

// time returns a time.Time that is a canonical representation of that day (at midnight UTC).
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Before reports whether the day d is before x. The unknown sentinel is
// before every real date.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether the day d is after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Compare returns -1, 0 or 1 comparing d to x chronologically.
func (d Date) Compare(x Date) int { return d.time().Compare(x.time()) }

// Add returns a new Date with the given number of days added.
func (d Date) Add(i int) Date { return NewDate(d.y, d.m, d.d+i) }

// AddMonth returns a new Date with the given number of months added.
func (d Date) AddMonth(i int) Date { return NewDate(d.y, d.m+time.Month(i), d.d) }

// StartOfMonth returns the first day of the date's month.
func (d Date) StartOfMonth() Date { return NewDate(d.y, d.m, 1) }

// Label returns the display form of the date, or "" for the unknown sentinel.
func (d Date) Label() string {
	if d.IsZero() {
		return ""
	}
	return d.time().Format(LabelFormat)
}

// Format returns a textual representation of the date value formatted
// according to the layout defined by the argument. See [time.Time.Format].
func (d Date) Format(format string) string { return d.time().Format(format) }

// String formats the date in ISO-8601, or "unknown" for the sentinel.
func (d Date) String() string {
	if d.IsZero() {
		return "unknown"
	}
	return d.time().Format("2006-01-02")
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

// MarshalJSON encodes the date as an ISO-8601 string, the unknown sentinel
// as "".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.time().Format("2006-01-02"))
}

// UnmarshalJSON decodes an ISO-8601 string; "" yields the unknown sentinel.
func (d *Date) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	t, err := time.Parse("2006-01-02", str)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", str, err)
	}
	*d = NewDate(t.Date())
	return nil
}

var _ json.Marshaler = (*Date)(nil)
var _ json.Unmarshaler = (*Date)(nil)

// dateSeparators are the accepted field separators in textual row dates.
const dateSeparators = "/.-"

// ParseRowDate parses a date field as produced by the row source. It accepts
// three forms:
//   - a spreadsheet serial day-count ("45231", possibly with a fractional
//     time-of-day part which is discarded),
//   - day/month/year with any separator among "/", "." and "-",
//   - year/month/day with the same separators.
//
// Any other input, including the empty string, yields the unknown sentinel.
// It never fails: a malformed date degrades the row, it does not reject it.
func ParseRowDate(s string) Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}
	}

	// Serial day-count form.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		n := int(serial)
		if n <= 0 || n > 200*365 { // plausible range: 1900..~2100
			return Date{}
		}
		t := serialEpoch.AddDate(0, 0, n)
		return NewDate(t.Date())
	}

	sep := ""
	for _, c := range dateSeparators {
		if strings.ContainsRune(s, c) {
			sep = string(c)
			break
		}
	}
	if sep == "" {
		return Date{}
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return Date{}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}
		}
		nums[i] = n
	}

	var y, m, d int
	if len(strings.TrimSpace(parts[0])) == 4 {
		y, m, d = nums[0], nums[1], nums[2] // year/month/day
	} else {
		d, m, y = nums[0], nums[1], nums[2] // day/month/year
	}
	if y < 100 {
		y += 2000
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return Date{}
	}
	return NewDate(y, time.Month(m), d)
}

// History stores a chronological series of values, each associated with a
// specific date. It ensures that dates are unique and the series is always
// sorted.
type History[T any] struct {
	days   []Date
	values []T
}

// Len returns the number of items in the history.
func (h *History[T]) Len() int { return len(h.days) }

// Append adds a point to the history. An existing value at that date is
// overwritten, the last data wins.
func (h *History[T]) Append(on Date, v T) *History[T] {
	if i := slices.Index(h.days, on); i >= 0 {
		h.values[i] = v
		return h
	}
	h.days, h.values = append(h.days, on), append(h.values, v)
	h.sort()
	return h
}

// Latest returns the latest date and value in the history, or zero values if
// the history is empty.
func (h *History[T]) Latest() (Date, T) {
	last := len(h.days) - 1
	if last < 0 {
		var zero T
		return Date{}, zero
	}
	return h.days[last], h.values[last]
}

// Truncate keeps only the most recent n points.
func (h *History[T]) Truncate(n int) *History[T] {
	if len(h.days) > n {
		h.days = h.days[len(h.days)-n:]
		h.values = h.values[len(h.values)-n:]
	}
	return h
}

// All returns an iterator over all date/value pairs in the history, in
// chronological order.
func (h *History[T]) All() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// chronological is a private implementation to keep the history sorted.
type chronological[T any] struct{ *History[T] }

func (s chronological[T]) Less(i, j int) bool { return s.days[i].Before(s.days[j]) }

func (s chronological[T]) Swap(i, j int) {
	s.days[i], s.days[j] = s.days[j], s.days[i]
	s.values[i], s.values[j] = s.values[j], s.values[i]
}

func (h *History[T]) sort() { sort.Sort(chronological[T]{h}) }
