package gpio

const gpioGetChipinfoIoctl uintptr = 0x8044b401
const gpioGetLineinfoIoctl uintptr = 0xc048b402
const gpioGetLinehandleIoctl uintptr = 0xc16cb403
const gpioGetLineeventIoctl uintptr = 0xc030b404
const gpiohandleGetLineValuesIoctl uintptr = 0xc040b408
const gpiohandleSetLineValuesIoctl uintptr = 0xc040b409

// HandlesMax is the maximum number of lines the kernel accepts in one request
const HandlesMax = 64

const nameSize = 32

// Consumer labels used when the caller does not pick one
const (
	DefaultLineConsumer  = "circuits_gpio_chip"
	DefaultEventConsumer = "circuits_cdev"
)

type LineFlag uint32

const LineKernel LineFlag = 0x00000001
const LineIsOut LineFlag = 0x00000002
const LineActiveLow LineFlag = 0x00000004
const LineOpenDrain LineFlag = 0x00000008
const LineOpenSource LineFlag = 0x00000010

type RequestFlag uint32

const RequestInput RequestFlag = 0x00000001
const RequestOutput RequestFlag = 0x00000002
const RequestActiveLow RequestFlag = 0x00000004
const RequestOpenDrain RequestFlag = 0x00000008
const RequestOpenSource RequestFlag = 0x00000010

type EventFlag uint32

const EventRisingEdge EventFlag = 0x00000001
const EventFallingEdge EventFlag = 0x00000002
const EventBothEdges = EventRisingEdge | EventFallingEdge

// Direction of a requested line
type Direction int

const (
	DirectionInput  Direction = 0
	DirectionOutput Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirectionInput:
		return "input"
	case DirectionOutput:
		return "output"
	}
	return "invalid"
}

func (d Direction) requestFlag() (RequestFlag, error) {
	switch d {
	case DirectionInput:
		return RequestInput, nil
	case DirectionOutput:
		return RequestOutput, nil
	}
	return 0, ErrorInvalidDirection
}

// Edge identifies the transition reported in an event record
type Edge uint32

const (
	EdgeRising  Edge = 0x01
	EdgeFalling Edge = 0x02
)

func (e Edge) String() string {
	switch e {
	case EdgeRising:
		return "rising"
	case EdgeFalling:
		return "falling"
	}
	return "unknown"
}
