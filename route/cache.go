package route

import (
	"regexp"

	lru "github.com/hashicorp/golang-lru/v2"
)

// regexpCacheSize bounds the compiled pattern cache. Patterns come from
// route declarations, so the working set is small and fixed.
const regexpCacheSize = 1024

var regexpCache = mustCache(regexpCacheSize)

func mustCache(size int) *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](size)
	if err != nil {
		panic(err)
	}
	return c
}

// compileRegexp returns a cached *regexp.Regexp for pattern, compiling it
// on first use.
func compileRegexp(pattern string) (*regexp.Regexp, error) {
	if re, ok := regexpCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	regexpCache.Add(pattern, re)
	return re, nil
}
