package framework

import (
	"io/fs"
	"path"
)

const defaultMaxDepth = 20

// Resolver finds the jsTestDriver.conf nearest to a file by walking up its
// directories inside a file system.
type Resolver struct {
	fsys     fs.FS
	cache    *Cache
	maxDepth int
}

// NewResolver creates a resolver over fsys. cache may be nil.
func NewResolver(fsys fs.FS, cache *Cache, maxDepth int) *Resolver {
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	return &Resolver{
		fsys:     fsys,
		cache:    cache,
		maxDepth: maxDepth,
	}
}

// Resolve returns the path of the nearest config at or above the directory
// of filePath. Traversal stops at the root of the file system.
func (r *Resolver) Resolve(filePath string) (string, bool) {
	dir := path.Dir(path.Clean(filePath))
	var visited []string

	configPath := ""
	for depth := 0; depth < r.maxDepth; depth++ {
		if r.cache != nil {
			if cached, found := r.cache.Get(dir); found {
				configPath = cached
				break
			}
		}

		visited = append(visited, dir)

		candidate := path.Join(dir, ConfigFileName)
		if info, err := fs.Stat(r.fsys, candidate); err == nil && !info.IsDir() {
			configPath = candidate
			break
		}

		if dir == "." || dir == "/" {
			break
		}
		dir = path.Dir(dir)
	}

	// Every visited directory shares the outcome, found or not.
	if r.cache != nil {
		for _, v := range visited {
			r.cache.Set(v, configPath)
		}
	}
	return configPath, configPath != ""
}
