package detection

import (
	"image"
	_ "image/jpeg" // spectacle writes JPEG
	_ "image/png"
	"log"
	"os"

	"github.com/corona10/goimagehash"
)

// hashSide is the DCT grid edge for the extended perception hash. 16x16 (256
// bits) keeps small text edits visible where the 64-bit hash would not.
const hashSide = 16

// frameCache remembers the hash of the last frame whose result was kept and
// tells whether a new screenshot is perceptually identical to it.
type frameCache struct {
	maxDistance int
	committed   *goimagehash.ExtImageHash
}

func newFrameCache(maxDistance int) *frameCache {
	return &frameCache{maxDistance: maxDistance}
}

// hash returns nil when the check is disabled or the image cannot be hashed.
func (c *frameCache) hash(imagePath string) *goimagehash.ExtImageHash {
	if c.maxDistance < 0 {
		return nil
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return nil
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil
	}
	h, err := goimagehash.ExtPerceptionHash(img, hashSide, hashSide)
	if err != nil {
		return nil
	}
	return h
}

// same reports whether h is within maxDistance of the committed frame.
func (c *frameCache) same(h *goimagehash.ExtImageHash) bool {
	if h == nil || c.committed == nil {
		return false
	}
	dist, err := c.committed.Distance(h)
	if err != nil {
		return false
	}
	if dist <= c.maxDistance {
		log.Printf("Detection: frame hash distance %d <= %d", dist, c.maxDistance)
		return true
	}
	return false
}

func (c *frameCache) commit(h *goimagehash.ExtImageHash) { c.committed = h }
