// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import "fmt"

// MPU-6050 register addresses used by the driver.
const (
	regSmplrtDiv   = 0x19
	regConfig      = 0x1A
	regGyroConfig  = 0x1B
	regAccelConfig = 0x1C
	regAccelXoutH  = 0x3B
	regPwrMgmt1    = 0x6B
	regWhoAmI      = 0x75
)

// Values written during initialization.
const (
	pwrWake        = 0x00 // clear SLEEP, internal 8 MHz oscillator
	smplrtDiv125Hz = 0x07 // 1 kHz / (1 + 7) with the DLPF enabled
	dlpf5Hz        = 0x06 // accel 5 Hz / gyro 5 Hz digital low pass
	whoAmIMPU6050  = 0x68
	burstLen       = 14 // ACCEL_XOUT_H .. GYRO_ZOUT_L
	fsSelShift     = 3
	defaultI2CAddr = 0x68
)

// RegisterInfo describes one configuration register for diagnostics.
type RegisterInfo struct {
	Address     byte
	Name        string
	Description string
	// Decode renders the register value; nil prints hex only.
	Decode func(v byte) string
}

// mpu6050Registers lists the registers dumped by Registers, in address order.
var mpu6050Registers = []RegisterInfo{
	{Address: regSmplrtDiv, Name: "SMPLRT_DIV", Description: "Sample Rate Divider",
		Decode: func(v byte) string { return fmt.Sprintf("%d Hz", 1000/(1+int(v))) }},
	{Address: regConfig, Name: "CONFIG", Description: "Configuration (DLPF)",
		Decode: func(v byte) string {
			return fmt.Sprintf("DLPF_CFG=%d (%s)", v&0x07, []string{"260Hz", "184Hz", "94Hz", "44Hz", "21Hz", "10Hz", "5Hz", "reserved"}[v&0x07])
		}},
	{Address: regGyroConfig, Name: "GYRO_CONFIG", Description: "Gyroscope Configuration",
		Decode: func(v byte) string {
			return fmt.Sprintf("FS_SEL=%d (±%d°/s)", (v>>fsSelShift)&0x03, []int{250, 500, 1000, 2000}[(v>>fsSelShift)&0x03])
		}},
	{Address: regAccelConfig, Name: "ACCEL_CONFIG", Description: "Accelerometer Configuration",
		Decode: func(v byte) string {
			return fmt.Sprintf("AFS_SEL=%d (±%dg)", (v>>fsSelShift)&0x03, []int{2, 4, 8, 16}[(v>>fsSelShift)&0x03])
		}},
	{Address: regPwrMgmt1, Name: "PWR_MGMT_1", Description: "Power Management 1",
		Decode: func(v byte) string {
			if v&0x40 != 0 {
				return "SLEEP"
			}
			return fmt.Sprintf("awake, CLKSEL=%d", v&0x07)
		}},
	{Address: regWhoAmI, Name: "WHO_AM_I", Description: "Device identity"},
}

// RegisterValue is one register read back from the device.
type RegisterValue struct {
	RegisterInfo
	Value byte
}

func (r RegisterValue) String() string {
	s := fmt.Sprintf("0x%02X %-12s = 0x%02X", r.Address, r.Name, r.Value)
	if r.Decode != nil {
		s += " " + r.Decode(r.Value)
	}
	return s
}
