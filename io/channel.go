// Package io provides the byte-wide I/O channels of the SAP-1 emulator.
// It includes the boot ROM (Rom), raw byte streams (Tape), hex text
// images (Hex), and the decimal output display (Display).
package io

import (
	"iter"
)

// Channel defines the interface for all I/O channels in the SAP-1 system.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive returns an iterator that yields bytes from the channel.
	Receive() iter.Seq[uint8]
	// Send writes a single byte to the channel.
	Send(value uint8) error
}

// Failer is implemented by channels that can fail part way through a Receive.
type Failer interface {
	// Err returns the first error seen while receiving, if any.
	Err() error
}

// ReceiveAll collects at most limit bytes from the channel.
// Returns ErrChannelOverrun if the channel has more than limit bytes.
func ReceiveAll(ch Channel, limit int) (data []uint8, err error) {
	for value := range ch.Receive() {
		if len(data) == limit {
			err = ErrChannelOverrun
			return
		}
		data = append(data, value)
	}

	if fail, ok := ch.(Failer); ok {
		err = fail.Err()
	}

	return
}

// SendAll sends every byte of data to the channel.
func SendAll(ch Channel, data []uint8) (err error) {
	for _, value := range data {
		err = ch.Send(value)
		if err != nil {
			return
		}
	}
	return
}
