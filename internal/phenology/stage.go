package phenology

import "fmt"

// Stage is one of eight ordered bloom stages.
type Stage int

const (
	BeforeBloom Stage = iota
	Opening
	ThirtyPercent
	FiftyPercent
	FullBloom
	Falling
	FlowersAndLeaves
	LeavesOnly
)

// Stages lists every stage in order.
var Stages = []Stage{
	BeforeBloom, Opening, ThirtyPercent, FiftyPercent,
	FullBloom, Falling, FlowersAndLeaves, LeavesOnly,
}

var stageKeys = [...]string{
	BeforeBloom:      "before_bloom",
	Opening:          "blooming",
	ThirtyPercent:    "30_percent",
	FiftyPercent:     "50_percent",
	FullBloom:        "full_bloom",
	Falling:          "falling",
	FlowersAndLeaves: "with_leaves",
	LeavesOnly:       "leaves_only",
}

var stageLabels = [...]string{
	BeforeBloom:      "開花前",
	Opening:          "開花",
	ThirtyPercent:    "3分咲き",
	FiftyPercent:     "5分咲き",
	FullBloom:        "8分咲き（満開）",
	Falling:          "散り始め",
	FlowersAndLeaves: "花＋若葉（葉桜）",
	LeavesOnly:       "葉のみ",
}

// Valid reports whether s is one of the eight stages.
func (s Stage) Valid() bool { return s >= BeforeBloom && s <= LeavesOnly }

// String returns the storage key, e.g. "30_percent".
func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageKeys[s]
}

// Label returns the display label shown to users.
func (s Stage) Label() string {
	if !s.Valid() {
		return ""
	}
	return stageLabels[s]
}

// MarshalText encodes the stage as its storage key.
func (s Stage) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid stage %d", int(s))
	}
	return []byte(stageKeys[s]), nil
}

// UnmarshalText decodes a storage key.
func (s *Stage) UnmarshalText(b []byte) error {
	v, ok := ParseStage(string(b))
	if !ok {
		return fmt.Errorf("unknown bloom stage %q", b)
	}
	*s = v
	return nil
}

// ParseStage converts a storage key back into a Stage.
func ParseStage(key string) (Stage, bool) {
	for i, k := range stageKeys {
		if k == key {
			return Stage(i), true
		}
	}
	return 0, false
}
