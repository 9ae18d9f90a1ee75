package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type write struct {
	target string
	frame  []byte
}

type recordingWriter struct {
	writes []write
	failAt int // 1-based; 0 never fails
	err    error
}

func (w *recordingWriter) WriteFrame(_ context.Context, target Characteristic, frame []byte) error {
	if w.failAt > 0 && len(w.writes)+1 == w.failAt {
		return w.err
	}
	w.writes = append(w.writes, write{target: target.UUID(), frame: append([]byte(nil), frame...)})
	return nil
}

func (w *recordingWriter) frames() [][]byte {
	out := make([][]byte, len(w.writes))
	for i, wr := range w.writes {
		out[i] = wr.frame
	}
	return out
}

func readyHandle(t *testing.T, family Family) (*Handle, *recordingWriter) {
	t.Helper()
	h, _ := newObservedHandle(t, family)
	w := &recordingWriter{}
	h.BindWriter(w)
	h.BindControlPoint(fakeChar(ControlPointUUID))
	require.Equal(t, StateReady, h.State())
	return h, w
}

func TestExecute_IlumaPayloads(t *testing.T) {
	tests := []struct {
		name CommandName
		want [][]byte
	}{
		{
			name: BrightnessHigh,
			want: [][]byte{{0x00, 0xC0, 0x46, 0x23, 0x64, 0x00, 0x00, 0x00, 0x4F}},
		},
		{
			name: BrightnessLow,
			want: [][]byte{{0x00, 0x08, 0x84, 0x24, 0x1E, 0x00, 0x00, 0x00, 0x00}},
		},
		{
			name: GestureEnable,
			want: [][]byte{
				{0x00, 0xC9, 0x48, 0x05, 0x3C, 0x05, 0x01, 0x00, 0x00, 0x01, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0xC0},
				{0x00, 0xC9, 0x04, 0x05, 0x05, 0x01, 0x00, 0x00, 0x6C},
				{0x00, 0xC9, 0x44, 0x05, 0x00, 0xFF, 0xFF, 0x00, 0xC3},
			},
		},
		{
			name: GestureDisable,
			want: [][]byte{
				{0x00, 0xC9, 0x48, 0x05, 0x2F, 0x05, 0x01, 0x00, 0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0xEB},
				{0x00, 0xC9, 0x44, 0x05, 0x00, 0xFF, 0xFF, 0x00, 0xC3},
				{0x00, 0xC9, 0x04, 0x05, 0x05, 0x01, 0x00, 0x00, 0x6C},
			},
		},
		{
			name: FlexPuffEnable,
			want: [][]byte{{0x00, 0xD2, 0x45, 0x22, 0x03, 0x01, 0x00, 0x00, 0x0A}},
		},
		{
			name: AutoStartDisable,
			want: [][]byte{{0x00, 0xC9, 0x47, 0x24, 0x01, 0x00, 0x00, 0x00, 0x54}},
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			h, w := readyHandle(t, FamilyIluma)

			res, err := h.Execute(context.Background(), tt.name)

			require.NoError(t, err)
			assert.Equal(t, tt.want, w.frames())
			assert.Equal(t, Result{Command: tt.name, FramesTotal: len(tt.want), FramesWritten: len(tt.want)}, res)
			for _, wr := range w.writes {
				assert.Equal(t, ControlPointUUID, wr.target)
			}
		})
	}
}

func TestExecute_NotReady(t *testing.T) {
	tests := []struct {
		name        string
		bindWriter  bool
		bindControl bool
	}{
		{name: "nothing bound"},
		{name: "writer only", bindWriter: true},
		{name: "control point only", bindControl: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newObservedHandle(t, FamilyIluma)
			w := &recordingWriter{}
			if tt.bindWriter {
				h.BindWriter(w)
			}
			if tt.bindControl {
				h.BindControlPoint(fakeChar(ControlPointUUID))
			}

			for _, name := range FamilyIluma.Commands() {
				res, err := h.Execute(context.Background(), name)
				assert.ErrorIs(t, err, ErrNotReady)
				assert.Zero(t, res.FramesWritten)
			}
			assert.Empty(t, w.writes)
		})
	}
}

func TestExecute_BaseFamilyRejectsIlumaCommands(t *testing.T) {
	h, w := readyHandle(t, FamilyBase)

	for _, name := range []CommandName{BrightnessHigh, BrightnessLow, GestureEnable, GestureDisable} {
		_, err := h.Execute(context.Background(), name)
		assert.ErrorIs(t, err, ErrUnsupportedCommand, string(name))
	}
	assert.Empty(t, w.writes)
	assert.Empty(t, FamilyBase.Commands())
}

func TestExecute_UnsupportedCheckedBeforeReadiness(t *testing.T) {
	h, _ := newObservedHandle(t, FamilyBase)

	_, err := h.Execute(context.Background(), GestureEnable)

	assert.ErrorIs(t, err, ErrUnsupportedCommand)
	assert.NotErrorIs(t, err, ErrNotReady)
}

func TestExecute_StopsAtFirstTransportFailure(t *testing.T) {
	h, w := readyHandle(t, FamilyIluma)
	transportErr := errors.New("att: write not permitted")
	w.failAt = 2
	w.err = transportErr

	res, err := h.Execute(context.Background(), GestureEnable)

	require.Error(t, err)
	assert.ErrorIs(t, err, transportErr)
	assert.Equal(t, 1, res.FramesWritten)
	assert.Equal(t, 3, res.FramesTotal)
	require.Len(t, w.writes, 1)
	assert.Equal(t, byte(0x48), w.writes[0].frame[2])
}

func TestFamily_CommandReturnsCopy(t *testing.T) {
	cmd, ok := FamilyIluma.Command(BrightnessHigh)
	require.True(t, ok)
	cmd[0][0] = 0xAA

	again, _ := FamilyIluma.Command(BrightnessHigh)
	assert.Equal(t, byte(0x00), again[0][0])
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    Family
		wantErr bool
	}{
		{in: "", want: FamilyAuto},
		{in: "auto", want: FamilyAuto},
		{in: "Base", want: FamilyBase},
		{in: " iluma ", want: FamilyIluma},
		{in: "terea", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFamily(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFamily_Resolve(t *testing.T) {
	assert.Equal(t, FamilyIluma, FamilyAuto.Resolve("IQOS ILUMA ONE"))
	assert.Equal(t, FamilyBase, FamilyAuto.Resolve("IQOS 3 DUO"))
	assert.Equal(t, FamilyBase, FamilyBase.Resolve("IQOS ILUMA"))
	assert.Equal(t, FamilyIluma, FamilyIluma.Resolve(""))
}
