package main

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedItem is anything that can be lazily loaded and unloaded.
type CachedItem interface {
	// Key identifies the item in the cache.
	Key() string
	// Loads loads the item and prepares it for use.
	Load() error
	// Unload releases the resources of the item. To use it again,
	// the caller must call Load.
	Unload()
}

// ImageCache keeps the most recently used items loaded. Items evicted from
// the cache are unloaded. Loads run in the background, and requests for an
// item already loading wait for that load instead of starting another.
type ImageCache[E CachedItem] struct {
	name    string
	items   *lru.Cache[string, E]
	fetchC  chan<- fetchRequest[E]
	// stopped is closed when the fetcher no longer adds to items.
	stopped chan struct{}
}

var errCacheFreed = errors.New("cache freed")

// fetchRequest is a request to the fetcher for an item.
type fetchRequest[E CachedItem] struct {
	item E
	// done is an optional channel to notify after load. Should be buffered.
	done chan error
}

// fetched is the result of loading an item.
type fetched[E CachedItem] struct {
	item E
	err  error
}

// NewImageCache returns a cache holding up to size loaded items. It starts a
// goroutine to fetch items. Caller must call Free to release it after use.
func NewImageCache[E CachedItem](name string, size int) (*ImageCache[E], error) {
	c := &ImageCache[E]{name: name}
	items, err := lru.NewWithEvict(size, func(key string, item E) {
		if *verbose {
			log.Printf("cache %s(%d): evicted %s", c.name, size, key)
		}
		item.Unload()
	})
	if err != nil {
		return nil, fmt.Errorf("cache %s: %w", name, err)
	}
	c.items = items
	c.startFetcher()
	return c, nil
}

// At ensures the item is loaded, waiting for the load if needed.
func (c *ImageCache[E]) At(item E) error {
	if c.items.Contains(item.Key()) {
		// refresh recency
		c.items.Get(item.Key())
		return nil
	}
	r := fetchRequest[E]{item, make(chan error, 1)}
	c.fetchC <- r
	return <-r.done
}

// Loaded reports whether the item is in the cache, without loading it.
func (c *ImageCache[E]) Loaded(item E) bool {
	return c.items.Contains(item.Key())
}

// Prefetch requests the items and returns. They are loaded in the background.
func (c *ImageCache[E]) Prefetch(items ...E) {
	for _, item := range items {
		if !c.items.Contains(item.Key()) {
			c.fetchC <- fetchRequest[E]{item, nil}
		}
	}
}

// Len returns the number of loaded items.
func (c *ImageCache[E]) Len() int {
	return c.items.Len()
}

// Free stops the fetcher and unloads every item. Loads still running are
// unloaded when they finish. The cache cannot be reused after this.
func (c *ImageCache[E]) Free() {
	c.stopFetcher()
	c.items.Purge()
}

// startFetcher launches the goroutine that fetches items and maintains the cache.
// All requests for items should be handled with messages to c.fetchC
func (c *ImageCache[E]) startFetcher() {
	in := make(chan fetchRequest[E])
	stopped := make(chan struct{})
	c.fetchC = in
	c.stopped = stopped
	go func() {
		var inflight loader
		failed := make(map[string]error) // loads are not retried
		ready := make(chan fetched[E])
		for {
			select {
			case req, ok := <-in:
				if !ok {
					close(stopped)
					drain(ready, &inflight)
					return
				}
				key := req.item.Key()
				if err, ok := failed[key]; ok || c.items.Contains(key) {
					if req.done != nil {
						req.done <- err
					}
				} else if inflight.track(key, req.done) {
					go func(item E) {
						if *verbose {
							defer func(start time.Time) {
								log.Printf("cache %s: load %s time %v",
									c.name, item.Key(), time.Since(start))
							}(time.Now())
						}
						ready <- fetched[E]{item, item.Load()}
					}(req.item)
				}
			case f := <-ready:
				key := f.item.Key()
				if !inflight.isActive(key) {
					panic(fmt.Sprintf("cache: ready item %s not in progress", key))
				}
				if f.err == nil {
					c.items.Add(key, f.item)
				} else {
					log.Printf("cache %s: %v", c.name, f.err)
					failed[key] = f.err
				}
				inflight.done(key, f.err)
			}
		}
	}()
}

// stopFetcher stops the fetcher goroutine. After this the cache is unusable.
func (c *ImageCache[E]) stopFetcher() {
	if c.fetchC != nil {
		close(c.fetchC)
		<-c.stopped
	}
	c.fetchC = nil
}

// drain waits for the loads in progress and unloads them. Waiters get
// errCacheFreed.
func drain[E CachedItem](ready <-chan fetched[E], inflight *loader) {
	for len(inflight.loading) > 0 {
		f := <-ready
		if f.err == nil {
			f.item.Unload()
		}
		inflight.done(f.item.Key(), errCacheFreed)
	}
}

// inProgress is an active load.
type inProgress struct {
	key   string
	reply []chan error // channels to notify after loading
}

// loader tracks the active loads.
type loader struct {
	loading []inProgress
}

// isActive returns whether a load of key is already in progress.
func (l *loader) isActive(key string) bool {
	return slices.ContainsFunc(l.loading, func(this inProgress) bool {
		return this.key == key
	})
}

// track tracks a request for key. Returns whether this is
// a request for a new load.
func (l *loader) track(key string, done chan error) bool {
	// append c to s only if c is not nil
	appendNotNil := func(s []chan error, c chan error) []chan error {
		if c != nil {
			s = append(s, c)
		}
		return s
	}

	i := slices.IndexFunc(l.loading, func(this inProgress) bool {
		return this.key == key
	})
	if i != -1 {
		l.loading[i].reply = appendNotNil(l.loading[i].reply, done)
		return false
	}

	l.loading = append(l.loading, inProgress{key, appendNotNil(nil, done)})
	return true
}

// done removes tracking for key. It notifies requesters with the result.
func (l *loader) done(key string, err error) {
	i := slices.IndexFunc(l.loading, func(this inProgress) bool {
		return this.key == key
	})
	if i >= 0 {
		for _, c := range l.loading[i].reply {
			c <- err
		}
		l.loading[i] = l.loading[len(l.loading)-1]
		l.loading = l.loading[0 : len(l.loading)-1]
	}
}
