package entity

import "github.com/cockroachdb/errors"

type Stem string

const (
	Drums  Stem = "drums"
	Bass   Stem = "bass"
	Other  Stem = "other"
	Vocals Stem = "vocals"
)

// AllStems is in the order the model emits them
var AllStems = []Stem{Drums, Bass, Other, Vocals}

var InvalidStemMark = errors.New("invalid stem")

func ParseStem(name string) (Stem, error) {
	for _, stem := range AllStems {
		if string(stem) == name {
			return stem, nil
		}
	}

	return "", errors.Mark(errors.Newf("unknown stem %q", name), InvalidStemMark)
}

func (s Stem) FileName() string {
	return string(s) + ".wav"
}

// Waveform is channels x samples
type Waveform [][]float64

type StemWaveform struct {
	Stem     Stem
	Waveform Waveform
}

// Separation always holds one waveform per stem, in AllStems order
type Separation []StemWaveform

func (s Separation) Validate() error {
	if len(s) != len(AllStems) {
		return errors.Newf("expected %d stems, got %d", len(AllStems), len(s))
	}

	for i, stemWaveform := range s {
		if stemWaveform.Stem != AllStems[i] {
			return errors.Newf("expected stem %s at position %d, got %s", AllStems[i], i, stemWaveform.Stem)
		}
	}

	return nil
}
