package scanpat

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is how many compiled patterns Scan keeps.
const DefaultCacheSize = 256

//nolint:gochecknoglobals // Shared compiled-pattern cache for Scan.
var patternCache = mustCache(DefaultCacheSize)

func mustCache(size int) *lru.Cache[string, *Pattern] {
	c, err := lru.New[string, *Pattern](size)
	if err != nil {
		panic(err)
	}
	return c
}

// Cached returns the compiled form of pattern, compiling it on first use.
func Cached(pattern string) (*Pattern, error) {
	if p, ok := patternCache.Get(pattern); ok {
		return p, nil
	}

	p, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Add(pattern, p)

	return p, nil
}

// Scan matches e against pattern. A malformed pattern panics with a
// *SyntaxError; use Compile to check patterns that come from users.
func Scan(e Element, pattern string) (Result, bool) {
	p, err := Cached(pattern)
	if err != nil {
		panic(err)
	}
	return p.Match(e)
}

// ScanFrom is Scan with sequential names starting at *cursor.
func ScanFrom(e Element, cursor *int, pattern string) (Result, bool) {
	p, err := Cached(pattern)
	if err != nil {
		panic(err)
	}
	return p.MatchFrom(e, cursor)
}
