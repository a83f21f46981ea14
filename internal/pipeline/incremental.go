package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/clubsmell/fragdash/internal/config"
	"github.com/clubsmell/fragdash/internal/store"
)

// CachedLoadResult extends LoadResult with cache metadata.
type CachedLoadResult struct {
	LoadResult
	CacheHit bool
}

// LoadWithCache returns the cached parse of the workbook when its mtime and
// size are unchanged, and otherwise parses it and refreshes the cache.
func LoadWithCache(path string, opts Options, cache *store.Cache, progressFn ProgressFunc) (*CachedLoadResult, error) {
	opts = opts.withDefaults()

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading workbook: %w", err)
	}
	key := cacheKey(path, opts)
	mtime, size := info.ModTime().UnixNano(), info.Size()

	tracked, ok, err := cache.Tracked(key)
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}

	if ok && tracked.Matches(mtime, size) {
		snap, err := cache.LoadWorkbook(key)
		if err != nil {
			return nil, fmt.Errorf("loading cached workbook: %w", err)
		}
		sheets := len(snap.Periods) + 1
		if progressFn != nil {
			progressFn(sheets, sheets)
		}
		return &CachedLoadResult{
			LoadResult: LoadResult{
				Dataset: Dataset{
					Path:     path,
					Catalog:  snap.Catalog,
					Records:  snap.Records,
					Periods:  snap.Periods,
					Issues:   snap.Issues,
					LoadedAt: time.Now(),
				},
				TotalSheets:  sheets,
				ParsedSheets: sheets,
			},
			CacheHit: true,
		}, nil
	}

	res, err := Load(path, opts, progressFn)
	if err != nil {
		return nil, err
	}

	snap := store.Snapshot{Catalog: res.Catalog, Records: res.Records, Periods: res.Periods, Issues: res.Issues}
	if err := cache.SaveWorkbook(key, mtime, size, snap); err != nil {
		// A stale cache only costs a reparse next time.
		res.Issues = append(res.Issues, fmt.Sprintf("cache not updated: %v", err))
	}
	return &CachedLoadResult{LoadResult: *res}, nil
}

// cacheKey separates cache entries for the same file read with different sheet options.
func cacheKey(path string, opts Options) string {
	return path + "#" + opts.CatalogSheet + "#" + opts.WearsPrefix
}

// CacheCounts reports how many fragrances and wear records are cached for
// the workbook read with opts.
func CacheCounts(cache *store.Cache, path string, opts Options) (fragrances, records int, err error) {
	return cache.Counts(cacheKey(path, opts.withDefaults()))
}

// ForgetCache drops the cached parse so the next load reads the workbook again.
func ForgetCache(cache *store.Cache, path string, opts Options) error {
	if err := cache.DeleteWorkbook(cacheKey(path, opts.withDefaults())); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// CachePath returns the full path to the cache database.
func CachePath() string {
	return filepath.Join(config.CacheDir(), "workbook.db")
}
