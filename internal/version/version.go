package version

import (
	"errors"
	"fmt"
	"strings"
)

// Ordering is the result of comparing two versions.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// String returns a human-readable representation
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// Reverse flips Less and Greater.
func (o Ordering) Reverse() Ordering {
	return -o
}

var (
	// ErrEmptyVersion is returned when pkgver is empty.
	ErrEmptyVersion = errors.New("empty version")

	// ErrInvalidRelease is returned when pkgrel is not digits[.digits].
	ErrInvalidRelease = errors.New("invalid release number")

	// ErrInvalidEpoch is returned when the epoch prefix is not a decimal number.
	ErrInvalidEpoch = errors.New("invalid epoch")
)

// Segment is one run of digits or of letters.
type Segment struct {
	Text    string
	Numeric bool
}

// Version is a parsed pkgver-pkgrel pair.
type Version struct {
	// Raw is "pkgver-pkgrel" as it appeared in the filename.
	Raw string

	// Epoch is the optional "N:" prefix of pkgver, "0" when absent.
	Epoch    string
	Upstream []Segment
	Release  []Segment
}

// String returns the raw version.
func (v Version) String() string {
	return v.Raw
}

// Parse builds a Version from the upstream version and release fields.
func Parse(pkgver, pkgrel string) (Version, error) {
	v := Version{Raw: pkgver + "-" + pkgrel, Epoch: "0"}

	if i := strings.IndexByte(pkgver, ':'); i >= 0 {
		epoch := pkgver[:i]
		if epoch == "" || !isDigits(epoch) {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidEpoch, epoch)
		}
		v.Epoch = epoch
		pkgver = pkgver[i+1:]
	}

	v.Upstream = Segments(pkgver)
	if len(v.Upstream) == 0 {
		return Version{}, fmt.Errorf("%w: %q", ErrEmptyVersion, v.Raw)
	}

	if !validRelease(pkgrel) {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidRelease, pkgrel)
	}
	v.Release = Segments(pkgrel)

	return v, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(pkgver, pkgrel string) Version {
	v, err := Parse(pkgver, pkgrel)
	if err != nil {
		panic(err)
	}
	return v
}

// Segments splits s into alternating runs of digits and letters.
// Every other byte separates runs and is dropped.
func Segments(s string) []Segment {
	var segs []Segment
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case isDigit(c):
			j := i
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			segs = append(segs, Segment{Text: s[i:j], Numeric: true})
			i = j
		case isLetter(c):
			j := i
			for j < len(s) && isLetter(s[j]) {
				j++
			}
			segs = append(segs, Segment{Text: s[i:j]})
			i = j
		default:
			i++
		}
	}
	return segs
}

// Compare orders a against b.
//
// Equal covers both identical versions and versions whose segments cannot be
// ordered (a digit run facing a letter run). Callers must treat Equal as
// "needs a human", never as "same file".
func Compare(a, b Version) Ordering {
	if a.Raw == b.Raw {
		return Equal
	}
	if c := compareNumeric(a.Epoch, b.Epoch); c != Equal {
		return c
	}
	c, comparable := compareSegments(a.Upstream, b.Upstream)
	if !comparable || c != Equal {
		return c
	}
	c, _ = compareSegments(a.Release, b.Release)
	return c
}

// compareSegments reports whether the lists could be ordered at all.
func compareSegments(a, b []Segment) (Ordering, bool) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		sa, sb := a[i], b[i]
		if sa.Numeric != sb.Numeric {
			return Equal, false
		}
		var c Ordering
		if sa.Numeric {
			c = compareNumeric(sa.Text, sb.Text)
		} else {
			c = compareText(sa.Text, sb.Text)
		}
		if c != Equal {
			return c, true
		}
	}
	switch {
	case len(a) > len(b):
		return Greater, true
	case len(a) < len(b):
		return Less, true
	}
	return Equal, true
}

// compareNumeric compares decimal strings of any length.
func compareNumeric(a, b string) Ordering {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return Less
		}
		return Greater
	}
	return compareText(a, b)
}

func compareText(a, b string) Ordering {
	return Ordering(strings.Compare(a, b))
}

func validRelease(s string) bool {
	major, minor, found := strings.Cut(s, ".")
	if !isDigits(major) {
		return false
	}
	return !found || isDigits(minor)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
