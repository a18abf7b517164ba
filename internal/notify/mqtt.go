// Package notify publishes prayer transitions and daily schedules to an MQTT
// broker, for home automation and status displays.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
	"github.com/smokyabdulrahman/miqat/internal/watch"
)

// DefaultTopic is the topic prefix used when none is configured.
const DefaultTopic = "miqat"

// publishTimeout bounds a single publish.
const publishTimeout = 5 * time.Second

// client is the part of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

// Publisher sends watcher events to <topic>/current and <topic>/schedule.
// Both are retained so late subscribers see the latest state.
type Publisher struct {
	client client
	topic  string
	layout string
}

// Options configures Connect.
type Options struct {
	Broker   string // e.g. tcp://localhost:1883
	ClientID string
	Topic    string
	Username string
	Password string
}

// Connect dials the broker and returns a Publisher.
func Connect(opts Options) (*Publisher, error) {
	if opts.Broker == "" {
		return nil, fmt.Errorf("mqtt broker address is required")
	}
	if opts.ClientID == "" {
		host, _ := os.Hostname()
		opts.ClientID = fmt.Sprintf("miqat-%s-%d", host, os.Getpid())
	}

	mo := mqtt.NewClientOptions()
	mo.AddBroker(opts.Broker)
	mo.SetClientID(opts.ClientID)
	mo.SetAutoReconnect(true)
	mo.SetConnectTimeout(10 * time.Second)
	if opts.Username != "" {
		mo.SetUsername(opts.Username)
		mo.SetPassword(opts.Password)
	}
	mo.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Str("broker", opts.Broker).Msg("mqtt connection lost")
	}

	c := mqtt.NewClient(mo)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to mqtt broker %s: %w", opts.Broker, token.Error())
	}
	log.Info().Str("broker", opts.Broker).Str("client_id", opts.ClientID).Msg("connected to mqtt broker")
	return newPublisher(c, opts.Topic), nil
}

func newPublisher(c client, topic string) *Publisher {
	topic = strings.TrimSuffix(strings.TrimSpace(topic), "/")
	if topic == "" {
		topic = DefaultTopic
	}
	return &Publisher{client: c, topic: topic, layout: time.RFC3339}
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// CurrentMessage is the payload of <topic>/current. Times are omitted when
// the sun never reaches the instant's angle.
type CurrentMessage struct {
	Prayer   string     `json:"prayer"`
	Time     *time.Time `json:"time,omitempty"`
	Next     string     `json:"next"`
	NextTime *time.Time `json:"next_time,omitempty"`
}

// ScheduleMessage is the payload of <topic>/schedule.
type ScheduleMessage struct {
	Date    string            `json:"date"`
	Method  string            `json:"method"`
	Timings map[string]string `json:"timings"`
}

// PublishCurrent announces the running prayer and the one after it. Before
// Fajr current is the previous night's Isha.
func (p *Publisher) PublishCurrent(current, next prayer.Instant) error {
	msg := CurrentMessage{
		Prayer:   current.Name.Key(),
		Time:     instantTime(current),
		Next:     next.Name.Key(),
		NextTime: instantTime(next),
	}
	return p.publish(p.topic+"/current", msg)
}

func instantTime(in prayer.Instant) *time.Time {
	if !in.Available() {
		return nil
	}
	t := in.Time
	return &t
}

// PublishSchedule announces a day's schedule. Unavailable instants are
// omitted.
func (p *Publisher) PublishSchedule(s prayer.Schedule) error {
	msg := ScheduleMessage{
		Date:    s.Date().Format("2006-01-02"),
		Method:  s.Params.Method.String(),
		Timings: make(map[string]string, len(s.Instants)),
	}
	for _, in := range s.Select(nil) {
		msg.Timings[in.Name.Key()] = in.Time.Format(p.layout)
	}
	return p.publish(p.topic+"/schedule", msg)
}

func (p *Publisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", topic, err)
	}
	token := p.client.Publish(topic, 1, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publishing %s: timed out after %s", topic, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing %s: %w", topic, err)
	}
	log.Debug().Str("topic", topic).Int("bytes", len(payload)).Msg("published")
	return nil
}

// Run publishes watcher events until events closes or ctx is done. Publish
// failures are logged and do not stop the loop.
func (p *Publisher) Run(ctx context.Context, events <-chan watch.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			var err error
			switch ev.Type {
			case watch.EventRollover:
				err = p.PublishSchedule(ev.Schedule)
			case watch.EventPrayer:
				err = p.PublishCurrent(ev.Started, ev.Next)
			}
			if err != nil {
				log.Warn().Err(err).Str("event", string(ev.Type)).Msg("mqtt publish failed")
			}
		}
	}
}
