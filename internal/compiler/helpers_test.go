package compiler

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/symm/internal/syntax"
)

// parseSites extracts every annotated impl in src.
func parseSites(t *testing.T, src string) []*syntax.Site {
	t.Helper()
	x, err := syntax.NewExtractor(nil)
	require.NoError(t, err)
	defer x.Close()

	f, err := x.Extract([]byte(src))
	require.NoError(t, err)
	return f.Sites
}

// parseSite extracts the single annotated impl in src.
func parseSite(t *testing.T, src string) *syntax.Site {
	t.Helper()
	sites := parseSites(t, src)
	require.Len(t, sites, 1)
	return sites[0]
}

const distanceSrc = `#[symmetric]
impl Distance<Disk> for Point2D {
    fn distance(&self, other: &Disk) -> f64 {
        let p_diff = self.distance(&other.center);
        if p_diff.le(&other.radius) {
            0.0_f64
        } else {
            p_diff - other.radius
        }
    }
}
`
