package sim

// A Msg is a piece of information transferred between components.
type Msg interface {
	Meta() *MsgMeta
	Clone() Msg
}

// MsgMeta contains the meta data attached to every message.
type MsgMeta struct {
	ID           string
	Src, Dst     RemotePort
	TrafficClass string
	TrafficBytes int
}

// A Rsp is a message that answers an earlier request.
type Rsp interface {
	Msg

	// GetRspTo returns the ID of the request that the response answers.
	GetRspTo() string
}
