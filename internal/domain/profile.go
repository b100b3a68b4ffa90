package domain

// Classification is the four-letter type code, one pole per dimension in
// EI, SN, TF, JP order.
type Classification string

// AllClassifications enumerates the sixteen possible type codes in a fixed
// order. The profile catalog must cover every one of them.
func AllClassifications() []Classification {
	out := make([]Classification, 0, 16)
	for _, ei := range []string{"E", "I"} {
		for _, sn := range []string{"S", "N"} {
			for _, tf := range []string{"T", "F"} {
				for _, jp := range []string{"J", "P"} {
					out = append(out, Classification(ei+sn+tf+jp))
				}
			}
		}
	}
	return out
}

// ContentProfile is the static content attached to a classification.
type ContentProfile struct {
	Classification Classification `json:"classification" yaml:"classification"`
	Title          string         `json:"title" yaml:"title"`
	Description    string         `json:"description" yaml:"description"`
	Strengths      []string       `json:"strengths" yaml:"strengths"`
	Suggestions    []string       `json:"suggestions" yaml:"suggestions"`
}
