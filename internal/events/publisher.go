package events

// Publisher is the write side of the broadcast channel, satisfied by
// *Broadcaster and by test doubles.
type Publisher interface {
	Publish(ev Event)
}
