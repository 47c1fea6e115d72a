// internal/status/constants.go
package status

// Liveness Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the liveness verdict.
const SlotHealthCode = 0

// SlotBatteryPercent holds the last reported battery, 0..100.
const SlotBatteryPercent = 1

// SlotTake holds the take number of the current slate.
const SlotTake = 2

// SlotSecondsInError holds the duration (in seconds) the device has not been healthy.
const SlotSecondsInError = 3

// ---- RESERVED RANGE ----

// Slots 4-10 are reserved for future use.
const SlotReservedStart = 4
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// MaxBaseSlot is the highest base slot whose block still fits a 16-bit register address.
const MaxBaseSlot = (1<<16)/SlotsPerDevice - 1

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents the state before the first health check.
const HealthUnknown uint16 = 0

// HealthOK represents a usable device.
const HealthOK uint16 = 1

// HealthBatteryLow represents a battery under the low threshold.
const HealthBatteryLow uint16 = 2

// HealthDeviceAbsent represents a device that never completed the handshake.
const HealthDeviceAbsent uint16 = 3

// HealthStopUnconfirmed represents a stop the device has not acknowledged.
const HealthStopUnconfirmed uint16 = 4

// HealthQueryError represents a failure while querying the device.
const HealthQueryError uint16 = 5
