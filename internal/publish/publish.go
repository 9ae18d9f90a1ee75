package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/vitaminmoo/iqos-tool/internal/config"
	"github.com/vitaminmoo/iqos-tool/internal/device"
)

const publishTimeout = 5 * time.Second

// Client is the part of the paho client the publisher uses.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho_mqtt.Token
}

// State is the retained message published for a device.
type State struct {
	device.Profile
	Family    string    `json:"family"`
	Address   string    `json:"address,omitempty"`
	Complete  bool      `json:"complete"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Publisher publishes device state to MQTT.
type Publisher struct {
	client  Client
	prefix  string
	qos     byte
	address string
	family  device.Family
	log     *zap.Logger
	now     func() time.Time
}

// Dial connects a paho client using cfg.
func Dial(cfg config.MQTTConfig) (paho_mqtt.Client, error) {
	opts := paho_mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(publishTimeout)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := paho_mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(publishTimeout) {
		return nil, errors.New("unable to connect to mqtt broker in time")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	return client, nil
}

// New returns a publisher for one device.
func New(client Client, cfg config.MQTTConfig, family device.Family, address string, log *zap.Logger) *Publisher {
	return &Publisher{
		client:  client,
		prefix:  strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:     byte(cfg.QoS),
		address: address,
		family:  family,
		log:     log,
		now:     time.Now,
	}
}

// StateTopic returns the topic a device's state is published on. Devices
// that have not reported a serial number yet are keyed by address.
func StateTopic(prefix, serial, address string) string {
	key := serial
	if key == "" {
		key = strings.ReplaceAll(strings.ToLower(address), ":", "")
	}
	if key == "" {
		key = "unknown"
	}
	return fmt.Sprintf("%s/%s/state", prefix, key)
}

// Publish sends the profile as a retained JSON state message.
func (p *Publisher) Publish(profile device.Profile) error {
	payload, err := json.Marshal(State{
		Profile:   profile,
		Family:    p.family.String(),
		Address:   p.address,
		Complete:  profile.Complete(),
		UpdatedAt: p.now().UTC(),
	})
	if err != nil {
		return err
	}

	topic := StateTopic(p.prefix, profile.SerialNumber, p.address)
	token := p.client.Publish(topic, p.qos, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timed out", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.log.Debug("Published state", zap.String("topic", topic), zap.Uint8("battery", profile.BatteryLevel))
	return nil
}

// Run publishes every profile received on updates until ctx is done or the
// channel is closed. Publish failures are logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context, updates <-chan device.Profile) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case profile, ok := <-updates:
			if !ok {
				return nil
			}
			if err := p.Publish(profile); err != nil {
				p.log.Warn("Failed to publish state", zap.Error(err))
			}
		}
	}
}
