package kasane

import "fmt"

// Kind selects which artifact to derive from a word's character masks.
type Kind int

const (
	// KindIntersection is the quiz question: ink only where both
	// characters overlap. Two-character words only.
	KindIntersection Kind = iota

	// KindDifference is the answer reveal: the three-way colored
	// classification of shared and exclusive ink. Two-character words
	// only.
	KindDifference

	// KindUnion stacks every character's ink. Words of 2-8 characters.
	KindUnion

	// KindVideoPreview is the representative still of the union video:
	// its final frame. Words of 3-8 characters.
	KindVideoPreview

	// KindVideo is the incremental-union video. Words of 3-8
	// characters.
	KindVideo
)

var kindNames = map[Kind]string{
	KindIntersection: "intersection",
	KindDifference:   "difference",
	KindUnion:        "union",
	KindVideoPreview: "preview",
	KindVideo:        "video",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps an artifact kind name to its Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("kasane: unknown artifact kind %q", name)
}

// lengthBounds returns the word-length band the kind accepts.
func (k Kind) lengthBounds() (min, max int) {
	switch k {
	case KindIntersection, KindDifference:
		return 2, 2
	case KindUnion:
		return 2, 8
	case KindVideoPreview, KindVideo:
		return 3, 8
	default:
		return 2, 8
	}
}

// code is the short cache-key prefix distinguishing artifact kinds
// that share a word and font.
func (k Kind) code() string {
	switch k {
	case KindIntersection:
		return "q"
	case KindDifference:
		return "a"
	case KindUnion:
		return "u"
	case KindVideoPreview:
		return "p"
	case KindVideo:
		return "v"
	default:
		return "x"
	}
}

// ext is the payload file extension.
func (k Kind) ext() string {
	if k == KindVideo {
		return ".mp4"
	}
	return ".png"
}
