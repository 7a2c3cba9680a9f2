// Package devices holds the static Broadlink device-type registry.
// It maps the 16-bit device type reported in a discovery response to a
// support class and a human-readable model label. The registry is built
// at process start and never mutated.
package devices

// Support classifies what this library can do with a device type.
type Support int

const (
	// SupportUnknown is a device type not present in the registry.
	SupportUnknown Support = iota

	// SupportIR is a supported remote without RF capability.
	SupportIR

	// SupportRF is a supported remote with RF sweep/learn capability.
	SupportRF

	// SupportNone is a known device type this library does not speak to
	// (plugs, sensors, alarm kits).
	SupportNone

	// SupportNoneOEM is a device type inside the OEM re-badge range,
	// unsupported by convention.
	SupportNoneOEM
)

// String returns a human-readable name for the support class.
func (s Support) String() string {
	switch s {
	case SupportIR:
		return "Supported"
	case SupportRF:
		return "Supported (RF)"
	case SupportNone:
		return "Unsupported"
	case SupportNoneOEM:
		return "Unsupported (OEM range)"
	default:
		return "Unknown"
	}
}

// OEM re-badged SPMini2 device types occupy a contiguous range.
const (
	oemRangeStart = 0x7530
	oemRangeEnd   = 0x7918
)

// Classification is the registry's verdict for one device type.
type Classification struct {
	DeviceType uint16
	Support    Support
	Label      string
}

// Supported reports whether a session can be established with the device.
func (c Classification) Supported() bool {
	return c.Support == SupportIR || c.Support == SupportRF
}

// HasRF reports whether the device exposes the RF sweep/learn operations.
func (c Classification) HasRF() bool {
	return c.Support == SupportRF
}

// RM devices without RF support.
var irDeviceTypes = map[uint16]string{
	0x2712: "Broadlink RM2",
	0x2737: "Broadlink RM Mini",
	0x273d: "Broadlink RM Pro Phicomm",
	0x2783: "Broadlink RM2 Home Plus",
	0x277c: "Broadlink RM2 Home Plus GDT",
	0x278f: "Broadlink RM Mini Shate",
	0x27c2: "Broadlink RM Mini 3",
}

// RM devices with RF support.
var rfDeviceTypes = map[uint16]string{
	0x272a: "Broadlink RM2 Pro Plus",
	0x2787: "Broadlink RM2 Pro Plus v2",
	0x278b: "Broadlink RM2 Pro Plus BL",
	0x2797: "Broadlink RM2 Pro Plus HYC",
	0x27a1: "Broadlink RM2 Pro Plus R1",
	0x27a6: "Broadlink RM2 Pro PP",
	0x279d: "Broadlink RM3 Pro Plus",
	0x27a9: "Broadlink RM3 Pro Plus v2", // model RM 3422
}

// Known device types this library does not support.
var unsupportedDeviceTypes = map[uint16]string{
	0x0000: "Broadlink SP1",
	0x2711: "Broadlink SP2",
	0x2719: "Honeywell SP2",
	0x7919: "Honeywell SP2",
	0x271a: "Honeywell SP2",
	0x791a: "Honeywell SP2",
	0x2720: "Broadlink SPMini",
	0x753e: "Broadlink SP3",
	0x2728: "Broadlink SPMini2",
	0x2733: "OEM Branded SPMini",
	0x273e: "OEM Branded SPMini",
	0x2736: "Broadlink SPMiniPlus",
	0x2714: "Broadlink A1",
	0x4eb5: "Broadlink MP1",
	0x2722: "Broadlink S1 (SmartOne Alarm Kit)",
	0x4e4d: "Dooya DT360E or Hysen Heating Controller",
}

// Classify looks a device type up in the registry.
// Unknown types yield SupportUnknown with an empty label; the caller decides
// how to surface them.
func Classify(deviceType uint16) Classification {
	c := Classification{DeviceType: deviceType, Support: SupportUnknown}

	if label, ok := irDeviceTypes[deviceType]; ok {
		c.Support = SupportIR
		c.Label = label
		return c
	}
	if label, ok := rfDeviceTypes[deviceType]; ok {
		c.Support = SupportRF
		c.Label = label
		return c
	}
	if label, ok := unsupportedDeviceTypes[deviceType]; ok {
		c.Support = SupportNone
		c.Label = label
		return c
	}
	if deviceType >= oemRangeStart && deviceType <= oemRangeEnd {
		c.Support = SupportNoneOEM
		c.Label = "OEM Branded SPMini2"
		return c
	}
	return c
}
