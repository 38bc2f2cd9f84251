package lazypix

import "image"

// DisplayOptions control the cache and placeholder policy for one request.
type DisplayOptions struct {
	// CacheInMemory keeps the decoded image in the memory cache after a
	// successful load.
	CacheInMemory bool
	// CacheOnDisk persists the raw fetched bytes under the cache directory.
	CacheOnDisk bool
	// ShowStubOnMiss displays Stub while the real image loads. When false,
	// the target is cleared instead.
	ShowStubOnMiss bool
	// Stub is the placeholder image shown when ShowStubOnMiss is set.
	Stub image.Image
}

// SimpleOptions returns the default policy: cache in memory and on disk,
// clear the target while loading.
func SimpleOptions() DisplayOptions {
	return DisplayOptions{
		CacheInMemory: true,
		CacheOnDisk:   true,
	}
}

// ListOptions returns the policy suited to recycled list surfaces: cache in
// memory and on disk, and show stub in place of a blank cell while loading.
func ListOptions(stub image.Image) DisplayOptions {
	return DisplayOptions{
		CacheInMemory:  true,
		CacheOnDisk:    true,
		ShowStubOnMiss: stub != nil,
		Stub:           stub,
	}
}
