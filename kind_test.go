package kasane

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindIntersection, "intersection"},
		{KindDifference, "difference"},
		{KindUnion, "union"},
		{KindVideoPreview, "preview"},
		{KindVideo, "video"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("%v.String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, kind := range []Kind{KindIntersection, KindDifference, KindUnion, KindVideoPreview, KindVideo} {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", kind.String(), err)
		}
		if parsed != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.String(), parsed, kind)
		}
	}

	if _, err := ParseKind("hologram"); err == nil {
		t.Error("expected error for unknown kind name")
	}
}

func TestKindLengthBounds(t *testing.T) {
	tests := []struct {
		kind     Kind
		min, max int
	}{
		{KindIntersection, 2, 2},
		{KindDifference, 2, 2},
		{KindUnion, 2, 8},
		{KindVideoPreview, 3, 8},
		{KindVideo, 3, 8},
	}
	for _, tt := range tests {
		min, max := tt.kind.lengthBounds()
		if min != tt.min || max != tt.max {
			t.Errorf("%v bounds = [%d,%d], want [%d,%d]", tt.kind, min, max, tt.min, tt.max)
		}
	}
}

func TestArtifactKeyUniqueness(t *testing.T) {
	// Multi-byte ideographs, separator lookalikes and font keys must
	// all stay collision-free.
	seen := map[string]string{}
	cases := []struct {
		kind Kind
		word string
		font string
	}{
		{KindIntersection, "空朝", "default"},
		{KindDifference, "空朝", "default"},
		{KindIntersection, "空朝", "mincho"},
		{KindIntersection, "朝空", "default"},
		{KindUnion, "a_b", "default"},
		{KindUnion, "ab", "x_default"},
	}
	for _, c := range cases {
		key := artifactKey(c.kind, []rune(c.word), c.font)
		if prev, dup := seen[key]; dup {
			t.Errorf("key collision: %q for both %v and (%v,%q,%q)", key, prev, c.kind, c.word, c.font)
		}
		seen[key] = c.word
	}
}
