package blocks

import (
	"testing"

	"github.com/babappa/babappa/gard"
)

func TestMapBlocksCodonScale(t *testing.T) {
	// 900 nt alignment, 300 codon sites, two detector blocks
	bps := []gard.Interval{{Start: 1, End: 50}, {Start: 51, End: 300}}
	mapped := MapBlocks(bps, 3, 900)
	if len(mapped) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(mapped))
	}

	b := mapped[0]
	if b.RawStart != 1 || b.RawEnd != 150 {
		t.Errorf("block 1 raw interval: expected (1,150), got (%d,%d)", b.RawStart, b.RawEnd)
	}
	if b.Start != 1 || b.End != 150 || b.TrimStart != 0 || b.TrimEnd != 0 {
		t.Errorf("block 1: expected untrimmed (1,150), got %+v", b)
	}

	b = mapped[1]
	if b.Start != 151 || b.End != 900 || b.TrimStart != 0 || b.TrimEnd != 0 {
		t.Errorf("block 2: expected untrimmed (151,900), got %+v", b)
	}
}

func TestMapBlocksScaleOne(t *testing.T) {
	// amino-acid coordinates: raw interval needs codon trimming
	mapped := MapBlocks([]gard.Interval{{Start: 2, End: 11}}, 1, 30)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 block, got %d", len(mapped))
	}
	b := mapped[0]
	if b.RawStart != 2 || b.RawEnd != 11 {
		t.Errorf("raw interval: expected (2,11), got (%d,%d)", b.RawStart, b.RawEnd)
	}
	// start 2 advances to 4, end 11 retreats to 9
	if b.Start != 4 || b.End != 9 {
		t.Errorf("adjusted interval: expected (4,9), got (%d,%d)", b.Start, b.End)
	}
	if b.TrimStart != 2 || b.TrimEnd != 2 {
		t.Errorf("trims: expected (2,2), got (%d,%d)", b.TrimStart, b.TrimEnd)
	}
	if b.Len()%3 != 0 {
		t.Errorf("block length %d not a codon multiple", b.Len())
	}
}

func TestMapBlocksRawRoundTrip(t *testing.T) {
	// raw interval before trimming is ((cs-1)*s+1, ce*s), clamped
	const length = 300
	for _, scale := range []int{1, 3} {
		for _, iv := range []gard.Interval{{Start: 1, End: 10}, {Start: 4, End: 25}, {Start: 10, End: 200}} {
			mapped := MapBlocks([]gard.Interval{iv}, scale, length)
			if len(mapped) != 1 {
				t.Fatalf("scale %d interval %v: block dropped", scale, iv)
			}
			wantStart := (iv.Start-1)*scale + 1
			wantEnd := iv.End * scale
			if wantEnd > length {
				wantEnd = length
			}
			b := mapped[0]
			if b.RawStart != wantStart || b.RawEnd != wantEnd {
				t.Errorf("scale %d interval %v: raw (%d,%d), expected (%d,%d)",
					scale, iv, b.RawStart, b.RawEnd, wantStart, wantEnd)
			}
		}
	}
}

func TestAdjustIdempotent(t *testing.T) {
	for start := 1; start < 30; start++ {
		for end := start; end < 30; end++ {
			s1, e1 := adjustToCodon(start, end)
			s2, e2 := adjustToCodon(s1, e1)
			if s1 != s2 || e1 != e2 {
				t.Errorf("adjust(%d,%d)=(%d,%d), re-adjusted to (%d,%d)",
					start, end, s1, e1, s2, e2)
			}
		}
	}
}

func TestMapBlocksDropsInverted(t *testing.T) {
	// interval (5,5) at scale 1: start advances to 7, end retreats
	// to 3, fully trimmed away
	mapped := MapBlocks([]gard.Interval{{Start: 5, End: 5}, {Start: 1, End: 10}}, 1, 30)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 surviving block, got %d", len(mapped))
	}
	if mapped[0].Native.Start != 1 {
		t.Errorf("wrong surviving block: %+v", mapped[0])
	}
}

func TestMapBlocksClamps(t *testing.T) {
	mapped := MapBlocks([]gard.Interval{{Start: 1, End: 500}}, 3, 90)
	if len(mapped) != 1 {
		t.Fatalf("expected 1 block, got %d", len(mapped))
	}
	b := mapped[0]
	if b.Start != 1 || b.End != 90 {
		t.Errorf("expected clamped (1,90), got (%d,%d)", b.Start, b.End)
	}
}

func TestMapBlocksOrderPreserved(t *testing.T) {
	bps := []gard.Interval{{Start: 10, End: 20}, {Start: 1, End: 9}, {Start: 21, End: 30}}
	mapped := MapBlocks(bps, 1, 90)
	if len(mapped) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(mapped))
	}
	for i, b := range mapped {
		if b.Native != bps[i] {
			t.Errorf("block %d: input order not preserved: %+v", i, b)
		}
	}
}
