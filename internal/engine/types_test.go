package engine

import "testing"

func TestNodeID_Key_DistinctTuplesDoNotCollide(t *testing.T) {
	a := NodeID{"ab", "c"}
	b := NodeID{"a", "bc"}

	if a.Key() == b.Key() {
		t.Fatalf("expected distinct keys for %v and %v, got equal key %q", a, b, a.Key())
	}
}

func TestNodeID_Key_EqualTuplesMatch(t *testing.T) {
	a := NodeID{"tenant-1", int64(42)}
	b := NodeID{"tenant-1", int64(42)}

	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %q != %q", a.Key(), b.Key())
	}
}

func TestNodeID_Single(t *testing.T) {
	if got := (NodeID{"x"}).Single(); got != "x" {
		t.Errorf("expected %q, got %v", "x", got)
	}

	if got := (NodeID{}).Single(); got != nil {
		t.Errorf("expected nil for empty NodeID, got %v", got)
	}
}

func TestConfigure_OverridesProcessDefaults(t *testing.T) {
	origMaxNodes, origTimeout := MaxNodes, QueryTimeout
	defer func() { MaxNodes, QueryTimeout = origMaxNodes, origTimeout }()

	Configure(5000, 60)

	if MaxNodes != 5000 {
		t.Errorf("expected MaxNodes 5000, got %d", MaxNodes)
	}

	if QueryTimeout != 60 {
		t.Errorf("expected QueryTimeout 60, got %d", QueryTimeout)
	}
}

func TestConfigure_NonPositiveLeavesDefaults(t *testing.T) {
	origMaxNodes, origTimeout := MaxNodes, QueryTimeout
	defer func() { MaxNodes, QueryTimeout = origMaxNodes, origTimeout }()

	Configure(0, -1)

	if MaxNodes != origMaxNodes {
		t.Errorf("expected MaxNodes unchanged at %d, got %d", origMaxNodes, MaxNodes)
	}

	if QueryTimeout != origTimeout {
		t.Errorf("expected QueryTimeout unchanged at %d, got %d", origTimeout, QueryTimeout)
	}
}

func TestCallOptions_EffectiveMaxNodes(t *testing.T) {
	origMaxNodes := MaxNodes
	defer func() { MaxNodes = origMaxNodes }()

	MaxNodes = 10_000

	withOverride := CallOptions{MaxNodes: 500}
	if got := withOverride.effectiveMaxNodes(); got != 500 {
		t.Errorf("expected 500, got %d", got)
	}

	withoutOverride := CallOptions{}
	if got := withoutOverride.effectiveMaxNodes(); got != 10_000 {
		t.Errorf("expected process default 10000, got %d", got)
	}
}
