package model

// AdviceRequest is the immutable input of one pipeline run.
type AdviceRequest struct {
	Decklist       string
	Format         string
	AdditionalInfo string
}

// Validate checks that the request contains a decklist
func (r *AdviceRequest) Validate() error {
	if r.Decklist == "" {
		return ErrEmptyDecklist
	}
	return nil
}

// Advice is the pipeline output: the synthesized document plus the materials
// that produced it.
type Advice struct {
	Request      AdviceRequest
	CardNames    []string
	Descriptions map[string]string
	Strategy     string
	Candidates   []string
	Text         string
}
