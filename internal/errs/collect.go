package errs

// Collector accumulates failures without stopping at the first one.
// The zero value is ready to use.
type Collector struct {
	err *Error
}

// Add merges err into the collected failure. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	c.err = Merge(c.err, From(err))
}

// Err returns the merged failure, or nil when nothing failed.
func (c *Collector) Err() error {
	if c.err.IsZero() {
		return nil
	}
	return c.err
}

// Gather calls fn for every item and concatenates the results. Every item is
// attempted; if any call fails the partial results are discarded and the
// merged error is returned.
func Gather[T, R any](items []T, fn func(T) ([]R, error)) ([]R, error) {
	var (
		out []R
		c   Collector
	)
	for _, item := range items {
		res, err := fn(item)
		if err != nil {
			c.Add(err)
			continue
		}
		out = append(out, res...)
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
