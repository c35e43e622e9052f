// Package cache provides a generic least-recently-used cache with hit and
// miss accounting.
//
//	c := cache.NewLRU[string, []uint32](32)
//	code, err := c.GetOrCreate(source, compile)
//
// LRU is safe for concurrent use and must not be copied after creation.
package cache
