package domain

// EventRecorder collects uncommitted domain events on an aggregate.
type EventRecorder struct {
	events []DomainEvent
}

// Record appends an event.
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// DomainEvents returns all uncommitted domain events.
func (r *EventRecorder) DomainEvents() []DomainEvent {
	return r.events
}

// ClearDomainEvents removes all uncommitted domain events.
func (r *EventRecorder) ClearDomainEvents() {
	r.events = nil
}
