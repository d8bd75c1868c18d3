package gpio

// struct gpioevent_data; i386 aligns the timestamp to 4 bytes, so no padding
type eventDataRaw struct {
	Timestamp uint64
	ID        uint32
}
