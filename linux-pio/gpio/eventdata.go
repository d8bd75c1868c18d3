//go:build !386

package gpio

// struct gpioevent_data, padded to the 8 byte alignment of its timestamp
type eventDataRaw struct {
	Timestamp uint64
	ID        uint32
	_         uint32
}
