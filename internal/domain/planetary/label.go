// internal/domain/planetary/label.go
package planetary

import "fmt"

// Label is one of the seven planetary hour rulers, in cycle order.
type Label int

const (
	Sun Label = iota
	Venus
	Mercury
	Moon
	Saturn
	Jupiter
	Mars
)

// CycleLength is the number of labels in one full cycle.
const CycleLength = 7

var labelNames = [CycleLength]string{"Sun", "Venus", "Mercury", "Moon", "Saturn", "Jupiter", "Mars"}

// Labels returns the cycle in order, starting at Sun.
func Labels() []Label {
	out := make([]Label, CycleLength)
	for i := range out {
		out[i] = Label(i)
	}
	return out
}

// LabelAt maps any (possibly negative) cycle position onto a Label.
func LabelAt(index int64) Label {
	i := index % CycleLength
	if i < 0 {
		i += CycleLength
	}
	return Label(i)
}

func (l Label) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// Valid reports whether l is one of the seven labels.
func (l Label) Valid() bool {
	return l >= Sun && l <= Mars
}

// Next returns the label that follows l in the cycle.
func (l Label) Next() Label {
	return LabelAt(int64(l) + 1)
}

// ParseLabel resolves a label name such as "Venus".
func ParseLabel(name string) (Label, error) {
	for i, n := range labelNames {
		if n == name {
			return Label(i), nil
		}
	}
	return 0, fmt.Errorf("unknown planetary label %q", name)
}
