package core

// Transformer rewrites a Report in place before it is rendered.
type Transformer interface {
	Transform(r *Report) error
}

// TransformFunc adapts an ordinary function to a Transformer.
type TransformFunc func(r *Report) error

// Transform calls f(r).
func (f TransformFunc) Transform(r *Report) error {
	return f(r)
}

// Chain applies transformers in order and returns the first error.
func Chain(r *Report, transformers ...Transformer) error {
	for _, tr := range transformers {
		if err := tr.Transform(r); err != nil {
			return err
		}
	}
	return nil
}
