package junction

// Sink receives summaries of closed junctions in emission order.
type Sink interface {
	WriteJunction(s *Summary) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(s *Summary) error

// WriteJunction calls fn(s).
func (fn SinkFunc) WriteJunction(s *Summary) error {
	return fn(s)
}

// MultiSink writes every summary to each sink in order, stopping at the
// first error.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(s *Summary) error {
		for _, sink := range sinks {
			if err := sink.WriteJunction(s); err != nil {
				return err
			}
		}
		return nil
	})
}
