package frame_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mewkiz/foxflac/frame"
)

func TestResolveBlockSize(t *testing.T) {
	fixed, tail := frame.ResolveBlockSize(0x8)
	require.Equal(t, frame.BlockSizeFixed, tail)
	require.EqualValues(t, 256, fixed)

	_, tail = frame.ResolveBlockSize(0x6)
	require.Equal(t, frame.BlockSizeRead8, tail)

	_, tail = frame.ResolveBlockSize(0x7)
	require.Equal(t, frame.BlockSizeRead16, tail)

	_, tail = frame.ResolveBlockSize(0x0)
	require.Equal(t, frame.BlockSizeReserved, tail)
}

func TestResolveSampleRate(t *testing.T) {
	fixed, tail := frame.ResolveSampleRate(0x9)
	require.Equal(t, frame.SampleRateFixed, tail)
	require.EqualValues(t, 44100, fixed)

	_, tail = frame.ResolveSampleRate(0x0)
	require.Equal(t, frame.SampleRateFromStreamInfo, tail)

	_, tail = frame.ResolveSampleRate(0xF)
	require.Equal(t, frame.SampleRateInvalid, tail)
}

func TestResolveSampleSize(t *testing.T) {
	fixed, tail := frame.ResolveSampleSize(0x4)
	require.Equal(t, frame.SampleSizeFixed, tail)
	require.EqualValues(t, 16, fixed)

	_, tail = frame.ResolveSampleSize(0x3)
	require.Equal(t, frame.SampleSizeReserved, tail)

	_, tail = frame.ResolveSampleSize(0x7)
	require.Equal(t, frame.SampleSizeReserved, tail)
}

func TestResolveChannelAssignment(t *testing.T) {
	ca, ok := frame.ResolveChannelAssignment(1)
	require.True(t, ok)
	require.EqualValues(t, 2, ca.ChannelCount())
	require.True(t, ca.IsIndependent())

	ca, ok = frame.ResolveChannelAssignment(10)
	require.True(t, ok)
	require.Equal(t, frame.MidSideStereo, ca)
	require.EqualValues(t, 2, ca.ChannelCount())
	require.False(t, ca.IsIndependent())

	_, ok = frame.ResolveChannelAssignment(11)
	require.False(t, ok)

	_, ok = frame.ResolveChannelAssignment(15)
	require.False(t, ok)
}
