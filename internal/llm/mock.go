package llm

import "context"

// MockClient scripts completion outcomes for tests. Responses and errors
// are consumed in order; the last entry repeats once exhausted.
type MockClient struct {
	Responses []string
	Errs      []error
	Calls     []string
}

func (m *MockClient) Generate(_ context.Context, prompt string, _ Options) (string, error) {
	i := len(m.Calls)
	m.Calls = append(m.Calls, prompt)

	pick := func(n int) int {
		if i < n {
			return i
		}
		return n - 1
	}

	var err error
	if len(m.Errs) > 0 {
		err = m.Errs[pick(len(m.Errs))]
	}
	var resp string
	if len(m.Responses) > 0 {
		resp = m.Responses[pick(len(m.Responses))]
	}
	return resp, err
}
