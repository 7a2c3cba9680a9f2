package session

// Events carries the callbacks a session invokes for decoded appliance
// responses. Handlers run on the transport's read goroutine and must not
// block. Nil handlers drop the event; absence of a consumer never affects
// protocol correctness.
type Events struct {
	// DeviceReady fires when a handshake completes and the session holds
	// the appliance-issued key.
	DeviceReady func(s *Session)

	// Temperature fires with the appliance's temperature reading in
	// degrees Celsius.
	Temperature func(value float64)

	// RawData fires with a raw IR/RF code captured in learning mode.
	RawData func(data []byte)

	// RawRFData fires when the first RF capture stage completes.
	RawRFData func(status byte)

	// RawRFData2 fires when the second RF capture stage completes.
	RawRFData2 func(status byte)
}

func (e Events) emitDeviceReady(s *Session) {
	if e.DeviceReady != nil {
		e.DeviceReady(s)
	}
}

func (e Events) emitTemperature(value float64) {
	if e.Temperature != nil {
		e.Temperature(value)
	}
}

func (e Events) emitRawData(data []byte) {
	if e.RawData != nil {
		e.RawData(data)
	}
}

func (e Events) emitRawRFData(status byte) {
	if e.RawRFData != nil {
		e.RawRFData(status)
	}
}

func (e Events) emitRawRFData2(status byte) {
	if e.RawRFData2 != nil {
		e.RawRFData2(status)
	}
}
