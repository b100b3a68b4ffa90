package domain

// Dimension is one of the four bipolar axes the assessment scores.
type Dimension string

const (
	DimensionEI Dimension = "EI"
	DimensionSN Dimension = "SN"
	DimensionTF Dimension = "TF"
	DimensionJP Dimension = "JP"
)

// Dimensions lists the four axes in classification order.
var Dimensions = [4]Dimension{DimensionEI, DimensionSN, DimensionTF, DimensionJP}

var dimensionPoles = map[Dimension][2]string{
	DimensionEI: {"E", "I"},
	DimensionSN: {"S", "N"},
	DimensionTF: {"T", "F"},
	DimensionJP: {"J", "P"},
}

// Valid reports whether d is one of the four known dimensions.
func (d Dimension) Valid() bool {
	_, ok := dimensionPoles[d]
	return ok
}

// Poles returns the positive-weight pole and the negative-weight pole.
func (d Dimension) Poles() (positive, negative string) {
	p := dimensionPoles[d]
	return p[0], p[1]
}

// Option is one selectable answer for a question. Weight sign is the
// polarity toward the question's dimension poles, magnitude the strength.
type Option struct {
	Text   string `json:"text" yaml:"text"`
	Weight int    `json:"weight" yaml:"weight"`
}

const (
	// MinOptionWeight and MaxOptionWeight bound valid option weights.
	MinOptionWeight = -2
	MaxOptionWeight = 2
)

// Question is a single assessment item. Immutable after load.
type Question struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Dimension Dimension `json:"dimension" yaml:"dimension"`
	Options   []Option  `json:"options" yaml:"options"`
}
