// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"periph.io/x/conn/v3/physic"
)

// ErrNotConnected is returned by Publish while the broker is unreachable.
var ErrNotConnected = errors.New("telemetry: mqtt client not connected")

// MQTTOpts configures an MQTTPublisher.
type MQTTOpts struct {
	Broker    string
	Port      int
	ClientID  string
	StationID string
	// Timeout bounds each publish. Defaults to 5s.
	Timeout time.Duration
}

// Topic returns the topic readings are published to.
func (o *MQTTOpts) Topic() string {
	return fmt.Sprintf("barolcd/%s/reading", o.StationID)
}

type mqttReading struct {
	StationID string    `json:"station_id"`
	Time      time.Time `json:"time"`
	Celsius   float64   `json:"celsius"`
	Pascal    float64   `json:"pascal"`
}

// MQTTPublisher publishes readings to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
	opts   MQTTOpts
	logger *slog.Logger

	mu        sync.RWMutex
	connected bool
}

// NewMQTTPublisher returns a publisher. Call Connect before Publish.
func NewMQTTPublisher(opts MQTTOpts, logger *slog.Logger) *MQTTPublisher {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	p := &MQTTPublisher{opts: opts, logger: logger}

	co := mqtt.NewClientOptions()
	co.AddBroker(fmt.Sprintf("tcp://%s:%d", opts.Broker, opts.Port))
	co.SetClientID(opts.ClientID)
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)
	co.SetConnectRetry(true)
	co.SetConnectRetryInterval(5 * time.Second)
	co.SetKeepAlive(30 * time.Second)
	co.SetOnConnectHandler(func(_ mqtt.Client) {
		p.setConnected(true)
		logger.Info("mqtt connected", "broker", opts.Broker, "port", opts.Port)
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		p.setConnected(false)
		logger.Warn("mqtt connection lost", "error", err)
	})
	p.client = mqtt.NewClient(co)
	return p
}

// Connect waits for the initial connection to the broker or for ctx to be
// done.
func (p *MQTTPublisher) Connect(ctx context.Context) error {
	token := p.client.Connect()
	const poll = 200 * time.Millisecond
	for {
		if token.WaitTimeout(poll) {
			if err := token.Error(); err != nil {
				return fmt.Errorf("telemetry: mqtt connect: %w", err)
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

// Publish implements Sink.
func (p *MQTTPublisher) Publish(r Reading) error {
	if !p.isConnected() {
		return ErrNotConnected
	}
	payload, err := encodeMQTT(p.opts.StationID, r)
	if err != nil {
		return err
	}
	topic := p.opts.Topic()
	token := p.client.Publish(topic, 1, false, payload)
	if !token.WaitTimeout(p.opts.Timeout) {
		return fmt.Errorf("telemetry: publish timeout for topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("telemetry: publish: %w", err)
	}
	p.logger.Debug("published reading", "topic", topic)
	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
	p.setConnected(false)
}

func encodeMQTT(stationID string, r Reading) ([]byte, error) {
	data, err := json.Marshal(mqttReading{
		StationID: stationID,
		Time:      r.Time,
		Celsius:   r.Celsius(),
		Pascal:    float64(r.Pressure) / float64(physic.Pascal),
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry: marshal reading: %w", err)
	}
	return data, nil
}

func (p *MQTTPublisher) isConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected && p.client.IsConnected()
}

func (p *MQTTPublisher) setConnected(v bool) {
	p.mu.Lock()
	p.connected = v
	p.mu.Unlock()
}

var _ Sink = &MQTTPublisher{}
