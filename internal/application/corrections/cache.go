// Package corrections memoizes synthesized corrections for the results of
// the most recent completed scan.
package corrections

import (
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/analysis"
	"github.com/AKSHAYKM0077/Secured-Code-Analyzer/internal/domain/remediation"
)

// SynthesizeFunc computes a correction; remediation.Synthesize in production.
type SynthesizeFunc func(analysis.FileAnalysis) (analysis.SynthesizedCorrection, bool)

type entry struct {
	correction analysis.SynthesizedCorrection
	ok         bool
}

// Cache maps file name -> correction for one scan generation.
//
// Keys are basenames, so two files that share a basename share an entry:
// whichever is computed first is what both names return.
type Cache struct {
	synth SynthesizeFunc
	group singleflight.Group

	mu         sync.RWMutex
	generation uint64
	results    *analysis.ScanResults
	entries    map[string]entry
}

func New(synth SynthesizeFunc) *Cache {
	if synth == nil {
		synth = remediation.Synthesize
	}
	return &Cache{synth: synth, entries: map[string]entry{}}
}

// Reset drops every entry and the delivered results, and pins the cache to
// generation. Called when a new scan starts or the current one is abandoned.
func (c *Cache) Reset(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = generation
	c.results = nil
	c.entries = map[string]entry{}
}

// Deliver hands the completed results of generation to the cache. Results
// from any other generation are refused.
func (c *Cache) Deliver(generation uint64, results *analysis.ScanResults) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.results = results
	return true
}

// Generation the generation the cache currently belongs to.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Results the delivered results, nil until the current scan completes.
func (c *Cache) Results() *analysis.ScanResults {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.results
}

// Len number of memoized entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Correction is the read-through accessor: it returns the stored correction
// for name, computing and storing it on first access. The second return is
// false when the file has nothing to correct.
func (c *Cache) Correction(name string) (analysis.SynthesizedCorrection, bool, error) {
	c.mu.RLock()
	gen := c.generation
	results := c.results
	e, hit := c.entries[name]
	c.mu.RUnlock()

	if hit {
		return e.correction, e.ok, nil
	}
	if results == nil {
		return analysis.SynthesizedCorrection{}, false, analysis.ErrScanNotCompleted
	}
	file, found := results.File(name)
	if !found {
		return analysis.SynthesizedCorrection{}, false, analysis.ErrFileNotFound
	}

	key := strconv.FormatUint(gen, 10) + "/" + name
	v, _, _ := c.group.Do(key, func() (any, error) {
		corr, ok := c.synth(file)
		computed := entry{correction: corr, ok: ok}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			// A newer scan started while computing; hand the value to this
			// caller only.
			return computed, nil
		}
		if existing, ok := c.entries[name]; ok {
			return existing, nil
		}
		c.entries[name] = computed
		return computed, nil
	})
	e = v.(entry)
	return e.correction, e.ok, nil
}
