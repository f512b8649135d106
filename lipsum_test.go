package rope

import (
	"math/rand"

	fuzz "github.com/google/gofuzz"
)

// Lipsum is the element type used throughout the tests. Its variants span
// the interesting width classes: fixed positive widths, caller-chosen
// widths, zero widths, and widths derived from a payload.
type Lipsum struct {
	Kind LipsumKind
	N    int    // width payload of Dolor
	Text string // payload of Consectur
	Flag bool   // payload of Adipiscing
}

type LipsumKind uint8

const (
	KindLorem LipsumKind = iota
	KindIpsum
	KindDolor
	KindSit
	KindAmet
	KindConsectur
	KindAdipiscing
)

func (l Lipsum) Width() int {
	switch l.Kind {
	case KindLorem:
		return 1
	case KindIpsum:
		return 2
	case KindDolor:
		return l.N
	case KindSit, KindAmet:
		return 0
	case KindConsectur:
		return len(l.Text)
	case KindAdipiscing:
		if l.Flag {
			return 1
		}
		return 0
	}
	return 0
}

func Lorem() Lipsum { return Lipsum{Kind: KindLorem} }
func Ipsum() Lipsum { return Lipsum{Kind: KindIpsum} }
func Dolor(n int) Lipsum { return Lipsum{Kind: KindDolor, N: n} }
func Sit() Lipsum { return Lipsum{Kind: KindSit} }
func Amet() Lipsum { return Lipsum{Kind: KindAmet} }
func Consectur(text string) Lipsum { return Lipsum{Kind: KindConsectur, Text: text} }
func Adipiscing(flag bool) Lipsum { return Lipsum{Kind: KindAdipiscing, Flag: flag} }

// lipsumFuzzer yields a deterministic element generator. The distribution
// matches the one used by the upstream shrink scenario: mostly cheap
// variants, with zero-width elements well represented.
func lipsumFuzzer(seed int64) *fuzz.Fuzzer {
	return fuzz.NewWithSeed(seed).NilChance(0).Funcs(
		func(l *Lipsum, c fuzz.Continue) {
			switch c.Intn(14) {
			case 0, 7:
				*l = Lorem()
			case 1, 8:
				*l = Ipsum()
			case 2:
				*l = Dolor(4)
			case 9:
				*l = Dolor(8)
			case 3, 10:
				*l = Sit()
			case 4, 11:
				*l = Amet()
			case 5:
				*l = Consectur("hello")
			case 12:
				*l = Consectur("bye")
			case 6:
				*l = Adipiscing(true)
			case 13:
				*l = Adipiscing(false)
			}
		})
}

func randomLipsums(fuzzer *fuzz.Fuzzer, n int) []Lipsum {
	elements := make([]Lipsum, n)
	for i := range elements {
		fuzzer.Fuzz(&elements[i])
	}
	return elements
}

// randomSlice mimics the upstream shrink scenario's input: a short run of
// random elements, up to 9 long.
func randomSlice(fuzzer *fuzz.Fuzzer, rng *rand.Rand) []Lipsum {
	return randomLipsums(fuzzer, rng.Intn(10))
}

func lipsumWidth(elements []Lipsum) int {
	width := 0
	for _, l := range elements {
		width += l.Width()
	}
	return width
}
