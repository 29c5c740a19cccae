package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordGeneration forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordGeneration(ev GenerationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordGeneration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordSnapshot forwards snapshot events when supported by the sink.
func (m *MultiSink) RecordSnapshot(ev SnapshotEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SnapshotRecorder); ok {
			if err := rec.RecordSnapshot(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPublish forwards publish events when supported by the sink.
func (m *MultiSink) RecordPublish(ev PublishEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PublishRecorder); ok {
			if err := rec.RecordPublish(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
