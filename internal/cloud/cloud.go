// Package cloud mirrors the pcPower and pcStatus properties over MQTT.
//
// Topics, under <prefix>/<device>/:
//
//	pcPower/set   command from the cloud ("true"/"false", "1"/"0", "on"/"off")
//	pcPower       retained desired power
//	pcStatus      retained device status
//	availability  retained "online"/"offline" (last will)
package cloud

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zenith_pc_control/internal/logger"
	"zenith_pc_control/internal/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	qos          = 1
	tokenTimeout = 5 * time.Second
	cmdTimeout   = 5 * time.Second
)

var ErrTimeout = errors.New("mqtt operation timed out")

// Client is the subset of mqtt.Client used here.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// PowerCommander accepts a desired power state from the cloud.
type PowerCommander interface {
	Command(ctx context.Context, on bool) error
	Desired() bool
}

type Options struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Prefix   string
	Device   string
}

// Topics derived from prefix and device name.
type Topics struct {
	PowerSet     string
	Power        string
	Status       string
	Availability string
}

func NewTopics(prefix, device string) Topics {
	base := strings.Trim(prefix, "/") + "/" + device + "/"
	return Topics{
		PowerSet:     base + "pcPower/set",
		Power:        base + "pcPower",
		Status:       base + "pcStatus",
		Availability: base + "availability",
	}
}

type Sync struct {
	client      Client
	topics      Topics
	power       PowerCommander
	maintenance func() bool
	log         *logger.Logger
}

func New(client Client, topics Topics, power PowerCommander, maintenance func() bool, log *logger.Logger) *Sync {
	return &Sync{
		client:      client,
		topics:      topics,
		power:       power,
		maintenance: maintenance,
		log:         log,
	}
}

// ClientOptions builds paho options with a last will on the availability
// topic. onConnect runs after every (re)connect.
func ClientOptions(o Options, onConnect func()) *mqtt.ClientOptions {
	topics := NewTopics(o.Prefix, o.Device)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(o.Broker)
	opts.SetClientID(o.ClientID)
	opts.SetUsername(o.Username)
	opts.SetPassword(o.Password)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetMaxReconnectInterval(time.Minute)
	// handlers publish and wait on tokens
	opts.SetOrderMatters(false)
	opts.SetWill(topics.Availability, "offline", qos, true)
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		c.Publish(topics.Availability, qos, true, "online")
		if onConnect != nil {
			onConnect()
		}
	})
	return opts
}

// Subscribe listens for power commands. Call again after a reconnect.
func (s *Sync) Subscribe() error {
	return wait(s.client.Subscribe(s.topics.PowerSet, qos, s.handlePower))
}

func (s *Sync) PublishStatus(st models.DeviceStatus) error {
	return wait(s.client.Publish(s.topics.Status, qos, true, st.String()))
}

func (s *Sync) PublishPower(on bool) error {
	return wait(s.client.Publish(s.topics.Power, qos, true, formatBool(on)))
}

func (s *Sync) handlePower(_ mqtt.Client, msg mqtt.Message) {
	on, err := ParseBool(string(msg.Payload()))
	if err != nil {
		s.log.Warnw("cloud_power_invalid", "topic", msg.Topic(), "payload", string(msg.Payload()))
		return
	}
	if s.maintenance() {
		s.log.Infow("cloud_power_ignored", "reason", "maintenance", "on", on)
		s.resync()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cmdTimeout)
	defer cancel()
	if err := s.power.Command(ctx, on); err != nil {
		s.log.Infow("cloud_power_rejected", "on", on, "err", err)
		s.resync()
	}
}

// resync republishes the actual desired power so the cloud drops a rejected
// value.
func (s *Sync) resync() {
	if err := s.PublishPower(s.power.Desired()); err != nil {
		s.log.Warnw("cloud_publish_failed", "topic", s.topics.Power, "err", err)
	}
}

func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on":
		return true, nil
	case "false", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func wait(t mqtt.Token) error {
	if !t.WaitTimeout(tokenTimeout) {
		return ErrTimeout
	}
	return t.Error()
}
