package models

// FileRecord is a fingerprinted regular file
type FileRecord struct {
	// Path is the absolute path on the filesystem
	Path string

	// Fingerprint is the 64-bit content hash (non-cryptographic)
	Fingerprint uint64

	// Size in bytes at the time the content was read
	Size int64

	// Previewable is true when the content sniffs as an image or video.
	// Advisory only, never used for clustering.
	Previewable bool
}

// Cluster is a group of files sharing a fingerprint.
// Before verification members only share a fingerprint; after verification
// they are pairwise byte-identical.
type Cluster struct {
	Fingerprint uint64
	Members     []FileRecord
}

// NewCluster materializes a cluster from the first two records that collided
func NewCluster(first, second FileRecord) *Cluster {
	return &Cluster{
		Fingerprint: first.Fingerprint,
		Members:     []FileRecord{first, second},
	}
}

// Append adds a member with the same fingerprint
func (c *Cluster) Append(rec FileRecord) {
	c.Members = append(c.Members, rec)
}

// Len returns the number of members
func (c *Cluster) Len() int {
	return len(c.Members)
}

// Paths returns the member paths in membership order
func (c *Cluster) Paths() []string {
	paths := make([]string, len(c.Members))
	for i, m := range c.Members {
		paths[i] = m.Path
	}
	return paths
}

// WastedBytes is the space that would be reclaimed by keeping a single copy
func (c *Cluster) WastedBytes() int64 {
	if len(c.Members) < 2 {
		return 0
	}
	return c.Members[0].Size * int64(len(c.Members)-1)
}
