package publish

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vitaminmoo/iqos-tool/internal/config"
	"github.com/vitaminmoo/iqos-tool/internal/device"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	published []message
	err       error
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token {
	c.published = append(c.published, message{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: c.err}
}

func newPublisher(client Client, log *zap.Logger) *Publisher {
	cfg := config.MQTTConfig{TopicPrefix: "home/iqos/", QoS: 1}
	p := New(client, cfg, device.FamilyIluma, "AA:BB:CC:DD:EE:FF", log)
	p.now = func() time.Time { return time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC) }
	return p
}

func TestStateTopic(t *testing.T) {
	assert.Equal(t, "iqos/S1/state", StateTopic("iqos", "S1", "AA:BB"))
	assert.Equal(t, "iqos/aabb/state", StateTopic("iqos", "", "AA:BB"))
	assert.Equal(t, "iqos/unknown/state", StateTopic("iqos", "", ""))
}

func TestPublish_RetainedState(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, zap.NewNop())

	err := p.Publish(device.Profile{
		ModelNumber:      "M1",
		SerialNumber:     "S1",
		SoftwareRevision: "R1",
		ManufacturerName: "Mfg1",
		BatteryLevel:     75,
	})
	require.NoError(t, err)
	require.Len(t, client.published, 1)

	msg := client.published[0]
	assert.Equal(t, "home/iqos/S1/state", msg.topic)
	assert.Equal(t, byte(1), msg.qos)
	assert.True(t, msg.retained)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.payload, &got))
	assert.Equal(t, "M1", got["model_number"])
	assert.Equal(t, float64(75), got["battery_level"])
	assert.Equal(t, "iluma", got["family"])
	assert.Equal(t, true, got["complete"])
	assert.Equal(t, "2026-10-16T12:00:00Z", got["updated_at"])
	assert.NotContains(t, got, "custom_name")
}

func TestPublish_PropagatesTokenError(t *testing.T) {
	client := &fakeClient{err: errors.New("not connected")}
	p := newPublisher(client, zap.NewNop())

	err := p.Publish(device.Profile{})
	assert.ErrorContains(t, err, "not connected")
}

func TestRun_LogsFailuresAndStopsOnClose(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := &fakeClient{err: errors.New("broker gone")}
	p := newPublisher(client, zap.New(core))

	updates := make(chan device.Profile, 2)
	updates <- device.Profile{BatteryLevel: 10}
	updates <- device.Profile{BatteryLevel: 20}
	close(updates)

	require.NoError(t, p.Run(context.Background(), updates))
	assert.Len(t, client.published, 2)
	assert.Equal(t, 2, logs.FilterMessage("Failed to publish state").Len())
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	p := newPublisher(&fakeClient{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, p.Run(ctx, make(chan device.Profile)))
}
