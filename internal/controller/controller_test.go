package controller

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWhileStrobedAlwaysReturnsButtonA(t *testing.T) {
	c := New()
	c.Write(0x01)
	c.SetButton(ButtonA, true)
	require.Equal(t, uint8(1), c.Read())
	require.Equal(t, uint8(1), c.Read())
}

func TestStrobeFallingEdgeLatchesAndShiftsOutInOrder(t *testing.T) {
	c := New()
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonSelect, true)
	c.SetButton(ButtonRight, true)
	c.Write(0x01)
	c.Write(0x00)

	want := []uint8{1, 0, 1, 0, 0, 0, 0, 1}
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Fatalf("bit %d: expected %d, got %d", i, w, got)
		}
	}
}

func TestReadPastEighthBitReturnsOnes(t *testing.T) {
	c := New()
	c.Write(0x01)
	c.Write(0x00)
	for i := 0; i < 8; i++ {
		c.Read()
	}
	require.Equal(t, uint8(1), c.Read())
	require.Equal(t, uint8(1), c.Read())
}

func TestSetButtonWhileStrobedTracksLiveState(t *testing.T) {
	c := New()
	c.Write(0x01)
	require.Equal(t, uint8(0), c.Read())
	c.SetButton(ButtonA, true)
	require.Equal(t, uint8(1), c.Read())
	c.SetButton(ButtonA, false)
	require.Equal(t, uint8(0), c.Read())
}

func TestResetClearsButtonsAndShiftState(t *testing.T) {
	c := New()
	c.SetButton(ButtonStart, true)
	c.Write(0x01)
	c.Write(0x00)
	c.Reset()
	require.Equal(t, uint8(0), c.Read())
}
