package osm

import (
	"math"
	"testing"

	"github.com/paulmach/osm"
)

func TestIsBikeAccessible(t *testing.T) {
	tests := []struct {
		name string
		tags osm.Tags
		want bool
	}{
		{
			name: "residential road",
			tags: osm.Tags{{Key: "highway", Value: "residential"}},
			want: true,
		},
		{
			name: "cycleway",
			tags: osm.Tags{{Key: "highway", Value: "cycleway"}},
			want: true,
		},
		{
			name: "motorway not bikeable",
			tags: osm.Tags{{Key: "highway", Value: "motorway"}},
			want: false,
		},
		{
			name: "footway with bicycle=yes override",
			tags: osm.Tags{
				{Key: "highway", Value: "footway"},
				{Key: "bicycle", Value: "yes"},
			},
			want: true,
		},
		{
			name: "bicycle=no overrides bikeable highway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "bicycle", Value: "no"},
			},
			want: false,
		},
		{
			name: "private access",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "access", Value: "private"},
			},
			want: false,
		},
		{
			name: "no highway tag",
			tags: osm.Tags{{Key: "name", Value: "Some Street"}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isBikeAccessible(tt.tags)
			if got != tt.want {
				t.Errorf("isBikeAccessible() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectionFlags(t *testing.T) {
	tests := []struct {
		name         string
		tags         osm.Tags
		wantForward  bool
		wantBackward bool
	}{
		{
			name:         "default bidirectional",
			tags:         osm.Tags{{Key: "highway", Value: "residential"}},
			wantForward:  true,
			wantBackward: true,
		},
		{
			name:         "motorway implied oneway",
			tags:         osm.Tags{{Key: "highway", Value: "motorway"}},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "roundabout implied oneway",
			tags: osm.Tags{
				{Key: "highway", Value: "residential"},
				{Key: "junction", Value: "roundabout"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "explicit oneway=yes",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
			},
			wantForward:  true,
			wantBackward: false,
		},
		{
			name: "explicit oneway=-1 (reverse)",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "-1"},
			},
			wantForward:  false,
			wantBackward: true,
		},
		{
			name: "oneway:bicycle=no overrides oneway for cyclists",
			tags: osm.Tags{
				{Key: "highway", Value: "primary"},
				{Key: "oneway", Value: "yes"},
				{Key: "oneway:bicycle", Value: "no"},
			},
			wantForward:  true,
			wantBackward: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd, bwd := directionFlags(tt.tags)
			if fwd != tt.wantForward || bwd != tt.wantBackward {
				t.Errorf("directionFlags() = (%v, %v), want (%v, %v)", fwd, bwd, tt.wantForward, tt.wantBackward)
			}
		})
	}
}

func TestUnsuitability(t *testing.T) {
	cyclewayVal := unsuitability(osm.Tags{{Key: "highway", Value: "cycleway"}})
	trunkVal := unsuitability(osm.Tags{{Key: "highway", Value: "trunk"}})
	if cyclewayVal >= trunkVal {
		t.Errorf("expected cycleway unsuitability (%v) < trunk unsuitability (%v)", cyclewayVal, trunkVal)
	}

	paved := unsuitability(osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "surface", Value: "asphalt"},
	})
	sandy := unsuitability(osm.Tags{
		{Key: "highway", Value: "residential"},
		{Key: "surface", Value: "sand"},
	})
	if paved >= sandy {
		t.Errorf("expected paved unsuitability (%v) < sandy unsuitability (%v)", paved, sandy)
	}

	withCycleLane := unsuitability(osm.Tags{
		{Key: "highway", Value: "primary"},
		{Key: "cycleway", Value: "track"},
	})
	withoutCycleLane := unsuitability(osm.Tags{{Key: "highway", Value: "primary"}})
	if withCycleLane >= withoutCycleLane {
		t.Errorf("expected dedicated cycle lane to lower unsuitability: %v >= %v", withCycleLane, withoutCycleLane)
	}
}

func TestParseElevation(t *testing.T) {
	v, err := parseElevation("123.4")
	if err != nil {
		t.Fatalf("parseElevation: %v", err)
	}
	if math.Abs(v-123.4) > 1e-9 {
		t.Errorf("parseElevation() = %v, want 123.4", v)
	}
}
