package sim

// A SendError marks a failed send or delivery. The sender should retry
// later.
type SendError struct{}

// NewSendError creates a SendError.
func NewSendError() *SendError {
	return new(SendError)
}

// A Connection moves messages from the outgoing buffer of one port to the
// incoming buffer of the destination port.
type Connection interface {
	Named
	Hookable

	PlugIn(port Port)
	Unplug(port Port)

	// NotifyAvailable is called by a port to notify that the port can
	// receive messages again.
	NotifyAvailable(port Port)

	// NotifySend is called by a port to notify that there are messages to be
	// forwarded.
	NotifySend()
}

// HookPosConnDeliver marks when a connection delivers a message to its
// destination port.
var HookPosConnDeliver = &HookPos{Name: "Conn Deliver"}
