package matcher

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/trailmatch/internal/config"
	"github.com/banshee-data/trailmatch/internal/geo"
	"github.com/banshee-data/trailmatch/internal/routesig"
	"github.com/banshee-data/trailmatch/internal/testutil"
)

func mustSig(t *testing.T, id string, pts []geo.Point, cfg config.MatchConfig) *routesig.RouteSignature {
	t.Helper()
	sig, err := routesig.Make(id, pts, cfg)
	testutil.AssertNoError(t, err)
	return sig
}

func straightTrack(offsetLng float64) []geo.Point {
	pts := make([]geo.Point, 20)
	for i := range pts {
		pts[i] = geo.Point{Lat: 51.50 + float64(i)*0.001, Lng: -0.10 + offsetLng}
	}
	return pts
}

func reversed(pts []geo.Point) []geo.Point {
	out := make([]geo.Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func TestCompareSelfIsStrongSameMatch(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	track := straightTrack(0)
	sig1 := mustSig(t, "a", track, cfg)
	sig2 := mustSig(t, "b", track, cfg)

	res, ok := Compare(sig1, sig2, cfg)
	if !ok {
		t.Fatal("expected self-compare to be a match")
	}
	if res.MatchPercentage < 95 {
		t.Errorf("got match percentage %v, want >= 95", res.MatchPercentage)
	}
	if res.Direction != DirectionSame {
		t.Errorf("got direction %v, want same", res.Direction)
	}
	if res.AMDMeters > cfg.PerfectThresholdMeters {
		t.Errorf("got AMD %v, want <= perfect threshold %v", res.AMDMeters, cfg.PerfectThresholdMeters)
	}
}

func TestCompareReversedTrackIsReverse(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	track := straightTrack(0)
	sig1 := mustSig(t, "a", track, cfg)
	sig2 := mustSig(t, "b", reversed(track), cfg)

	res, ok := Compare(sig1, sig2, cfg)
	if !ok {
		t.Fatal("expected reversed track to still be a match")
	}
	if res.Direction != DirectionReverse {
		t.Errorf("got direction %v, want reverse", res.Direction)
	}
}

func TestCompareDisjointRoutesNoMatch(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	sig1 := mustSig(t, "a", straightTrack(0), cfg)
	// A track in a completely different city; far beyond zero_threshold.
	nyc := make([]geo.Point, 20)
	for i := range nyc {
		nyc[i] = geo.Point{Lat: 40.71 + float64(i)*0.001, Lng: -74.00}
	}
	sig2 := mustSig(t, "b", nyc, cfg)

	_, ok := Compare(sig1, sig2, cfg)
	if ok {
		t.Fatal("expected disjoint routes in different cities to be a no-match")
	}
}

func TestCompareIsSymmetricModuloIDOrder(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	track := straightTrack(0)
	sig1 := mustSig(t, "a", track, cfg)
	sig2 := mustSig(t, "b", reversed(track), cfg)

	fwd, ok1 := Compare(sig1, sig2, cfg)
	rev, ok2 := Compare(sig2, sig1, cfg)
	if ok1 != ok2 {
		t.Fatal("expected both orderings to agree on match/no-match")
	}
	testutil.AssertWithinTolerance(t, fwd.MatchPercentage, rev.MatchPercentage, 0.01)
	testutil.AssertWithinTolerance(t, fwd.AMDMeters, rev.AMDMeters, 0.01)
}

func TestCompareLengthPrefilterRejectsVeryDifferentLengths(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	short := straightTrack(0)[:3]
	long := straightTrack(0)

	sig1 := mustSig(t, "a", short, cfg)
	sig2 := mustSig(t, "b", long, cfg)

	_, ok := Compare(sig1, sig2, cfg)
	if ok {
		t.Fatal("expected length-ratio prefilter to reject a 3-point vs 20-point track")
	}
}

func TestCompareBothLoopsIsSame(t *testing.T) {
	cfg := config.DefaultMatchConfig()
	loop := []geo.Point{
		{Lat: 51.50, Lng: -0.10},
		{Lat: 51.51, Lng: -0.11},
		{Lat: 51.50, Lng: -0.12},
		{Lat: 51.4999, Lng: -0.1001},
	}
	sig1 := mustSig(t, "a", loop, cfg)
	sig2 := mustSig(t, "b", loop, cfg)

	res, ok := Compare(sig1, sig2, cfg)
	if !ok {
		t.Fatal("expected loop self-compare to match")
	}
	if res.Direction != DirectionSame {
		t.Errorf("got direction %v, want same for two loops", res.Direction)
	}
}

func TestScoreFromAMDLinearMapping(t *testing.T) {
	cases := []struct {
		name      string
		amd       float64
		wantExact *float64 // nil means "strictly between 0 and 100"
	}{
		{name: "below perfect threshold clamps to 100", amd: 10, wantExact: ptr(100.0)},
		{name: "at perfect threshold is 100", amd: 30, wantExact: ptr(100.0)},
		{name: "above zero threshold clamps to 0", amd: 300, wantExact: ptr(0.0)},
		{name: "at zero threshold is 0", amd: 250, wantExact: ptr(0.0)},
		{name: "midpoint falls strictly between", amd: 140},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := scoreFromAMD(tc.amd, 30, 250)
			if tc.wantExact != nil {
				require.Equal(t, *tc.wantExact, got)
				return
			}
			require.Greater(t, got, 0.0)
			require.Less(t, got, 100.0)
		})
	}
}

func ptr(f float64) *float64 { return &f }
