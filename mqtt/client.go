// Package mqtt lets a broker trigger animations.
//
// Topics, relative to the configured prefix:
//   - animation/run (subscribed): payload is a sequence like `wakeup happy` played by the driver
//   - animation/state (published, retained): last animation played
//   - availability (published, retained): `online` or `offline`
package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/mdouchement/eyectl"
	"github.com/mdouchement/eyectl/eyes"
	"github.com/mdouchement/logger"
)

const (
	TopicRun          = "animation/run"
	TopicState        = "animation/state"
	TopicAvailability = "availability"
)

type Player interface {
	Play(ctx context.Context, seq []eyes.Animation) error
	Primaries(seq []eyes.Animation) []eyes.Animation
}

type Client struct {
	client paho.Client
	player Player
	prefix string
	ctx    context.Context
}

func New(ctx context.Context, cfg eyectl.MQTT, player Player) *Client {
	c := &Client{
		player: player,
		prefix: strings.TrimSuffix(cfg.TopicPrefix, "/"),
		ctx:    ctx,
	}
	log := logger.LogWith(ctx)

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetKeepAlive(10 * time.Second)
	opts.SetPingTimeout(5 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(time.Minute)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetWill(c.topic(TopicAvailability), "offline", 1, true)
	opts.SetOnConnectHandler(c.onConnect)
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		log.WithError(err).Error("MQTT connection lost, reconnecting")
	})

	c.client = paho.NewClient(opts)
	return c
}

func (c *Client) Connect() error {
	logger.LogWith(c.ctx).Infof("Connecting to MQTT broker")

	token := c.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt: %w", token.Error())
	}
	return nil
}

func (c *Client) Disconnect() {
	if c.client == nil || !c.client.IsConnected() {
		return
	}

	token := c.client.Publish(c.topic(TopicAvailability), 1, true, "offline")
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		logger.LogWith(c.ctx).WithError(token.Error()).Error("Could not publish offline status")
	}
	c.client.Disconnect(250)
}

func (c *Client) Publish(subtopic string, payload string, retained bool) {
	if c.client == nil || !c.client.IsConnected() {
		return
	}

	topic := c.topic(subtopic)
	token := c.client.Publish(topic, 0, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			logger.LogWith(c.ctx).Errorf("Timeout publishing to %s", topic)
			return
		}
		if token.Error() != nil {
			logger.LogWith(c.ctx).WithError(token.Error()).Errorf("Could not publish to %s", topic)
		}
	}()
}

func (c *Client) topic(subtopic string) string {
	return c.prefix + "/" + subtopic
}

func (c *Client) onConnect(client paho.Client) {
	log := logger.LogWith(c.ctx)
	log.Info("Connected to MQTT broker")

	topic := c.topic(TopicRun)
	if token := client.Subscribe(topic, 1, c.handleRun); token.Wait() && token.Error() != nil {
		log.WithError(token.Error()).Errorf("Could not subscribe to %s", topic)
	} else {
		log.Infof("Subscribed to %s", topic)
	}

	c.Publish(TopicAvailability, "online", true)
}

func (c *Client) handleRun(_ paho.Client, msg paho.Message) {
	seq, err := eyectl.ParseSequence(string(msg.Payload()))
	if err != nil {
		logger.LogWith(c.ctx).WithError(err).Errorf("Invalid payload on %s", msg.Topic())
		return
	}
	seq = c.player.Primaries(seq)
	if len(seq) == 0 {
		logger.LogWith(c.ctx).Debugf("Nothing to play from %s", msg.Topic())
		return
	}

	// Do not block paho's message router while the display animates.
	go c.play(seq)
}

// play expects seq to hold primaries only so the published state is an animation actually sent.
func (c *Client) play(seq []eyes.Animation) {
	if err := c.player.Play(c.ctx, seq); err != nil {
		logger.LogWith(c.ctx).WithError(err).Error("Could not play MQTT sequence")
		return
	}

	c.Publish(TopicState, seq[len(seq)-1].String(), true)
}
