package label

import (
	"fmt"
	"strings"
)

// Kind identifies one of the four parallel streams of a song.
type Kind int

const (
	MonoScore Kind = iota
	FullScore
	MonoAlign
	FullAlign
)

// NumKinds is the number of parallel streams per song.
const NumKinds = 4

// Kinds lists every stream kind in group order.
var Kinds = [NumKinds]Kind{MonoScore, FullScore, MonoAlign, FullAlign}

var kindNames = [NumKinds]string{"mono_score", "full_score", "mono_align", "full_align"}

func (k Kind) String() string {
	if k < 0 || int(k) >= NumKinds {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// IsFull reports whether records of this kind carry full-context payloads.
func (k Kind) IsFull() bool {
	return k == FullScore || k == FullAlign
}

// Dir is the input directory name for the kind under out_dir.
func (k Kind) Dir() string {
	return k.String() + "_round"
}

// SegDir is the output directory name for segmented labels of the kind.
func (k Kind) SegDir() string {
	return k.Dir() + "_seg"
}

// ParseKind resolves a kind name such as "mono_score".
func ParseKind(value string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for i, name := range kindNames {
		if name == normalized {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown stream kind %q", value)
}
