package ble

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/config"
)

func TestMatches(t *testing.T) {
	byName := config.ScanConfig{NameMatch: "iqos"}
	byAddress := config.ScanConfig{NameMatch: "iqos", Address: "AA:BB:CC:DD:EE:FF"}

	tests := []struct {
		name    string
		cfg     config.ScanConfig
		devName string
		address string
		want    bool
	}{
		{name: "name contains match", cfg: byName, devName: "IQOS ILUMA 1234", want: true},
		{name: "unrelated name", cfg: byName, devName: "SFP-Wizard"},
		{name: "no name advertised", cfg: byName, devName: ""},
		{name: "address pinned", cfg: byAddress, devName: "anything", address: "aa:bb:cc:dd:ee:ff", want: true},
		{name: "address pinned other device", cfg: byAddress, devName: "IQOS ILUMA", address: "11:22:33:44:55:66"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matches(tt.cfg, tt.devName, tt.address))
		})
	}
}

type acked struct{ got []byte }

func (a *acked) Write(p []byte) (int, error) {
	a.got = append([]byte(nil), p...)
	return len(p), nil
}

func (a *acked) WriteWithoutResponse([]byte) (int, error) {
	return 0, errors.New("must not be used when Write is available")
}

type unacked struct{ got []byte }

func (u *unacked) WriteWithoutResponse(p []byte) (int, error) {
	u.got = append([]byte(nil), p...)
	return len(p), nil
}

func TestWrite_PrefersAcknowledged(t *testing.T) {
	c := &acked{}
	n, err := write(c, []byte{0x00, 0xc0}, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte{0x00, 0xc0}, c.got)
}

func TestWrite_FallsBackToWithoutResponse(t *testing.T) {
	c := &unacked{}
	_, err := write(c, []byte{0x01}, zap.NewNop())

	require.NoError(t, err)
	assert.Equal(t, []byte{0x01}, c.got)
}

func TestWrite_NotWritable(t *testing.T) {
	_, err := write(struct{}{}, []byte{0x01}, zap.NewNop())
	assert.Error(t, err)
}

type foreignChar struct{}

func (foreignChar) UUID() string { return "x" }

func TestWriteFrame_RejectsForeignReference(t *testing.T) {
	w := NewWriter(zap.NewNop())
	err := w.WriteFrame(context.Background(), foreignChar{}, []byte{0x00})
	assert.ErrorContains(t, err, "unsupported characteristic reference")
}
