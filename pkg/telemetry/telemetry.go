// Package telemetry forwards collected records to an MQTT broker as JSON
// payloads. Forwarding is optional; when disabled the collector uses the
// no-op publisher.
package telemetry

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Event is one forwarded record.
type Event struct {
	RunID     string    `json:"run_id,omitempty"`
	Source    string    `json:"source,omitempty"`
	Kind      string    `json:"kind"`
	Timestamp uint32    `json:"timestamp,omitempty"`
	Fields    []float64 `json:"fields,omitempty"`
	Raw       string    `json:"raw"`
}

// Publisher forwards events to some sink.
type Publisher interface {
	Publish(Event) error
	Close()
}

// MQTT publishes events to a broker topic.
type MQTT struct {
	client mqtt.Client
	topic  string
}

// NewMQTT connects to the broker and returns a publisher for the topic.
func NewMQTT(broker, clientID, topic string) (*MQTT, error) {
	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}
	return &MQTT{client: client, topic: topic}, nil
}

// Publish sends one event as a JSON payload at QoS 0.
func (m *MQTT) Publish(ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("failed to publish event: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}

// Noop is a publisher that discards events. Used when telemetry is
// disabled.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(Event) error { return nil }

// Close does nothing.
func (Noop) Close() {}

// Ensure publishers implement Publisher.
var _ Publisher = (*MQTT)(nil)
var _ Publisher = Noop{}
