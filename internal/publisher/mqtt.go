package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/jgoulah/personadash/internal/config"
	"github.com/jgoulah/personadash/pkg/models"
)

// Publisher sends dataset summaries to Home Assistant, over MQTT, the HTTP
// states API, or both
type Publisher struct {
	client      mqtt.Client
	topicPrefix string
	haConfig    config.HAConfig
	httpClient  *http.Client
}

// New creates a new publisher. At least one of the two sinks must be enabled.
func New(mqttCfg config.MQTTConfig, haCfg config.HAConfig) (*Publisher, error) {
	if !mqttCfg.Enabled && !haCfg.Enabled {
		return nil, fmt.Errorf("neither MQTT nor Home Assistant publishing is enabled in config")
	}

	if haCfg.Enabled {
		if haCfg.URL == "" {
			return nil, fmt.Errorf("Home Assistant URL is required when enabled")
		}
		if haCfg.Token == "" {
			return nil, fmt.Errorf("Home Assistant token is required when enabled")
		}
		if haCfg.EntityID == "" {
			return nil, fmt.Errorf("Home Assistant entity_id is required when enabled")
		}
	}

	p := &Publisher{
		haConfig:   haCfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	if mqttCfg.Enabled {
		if mqttCfg.Broker == "" {
			return nil, fmt.Errorf("MQTT broker address is required when enabled")
		}

		p.topicPrefix = mqttCfg.TopicPrefix
		if p.topicPrefix == "" {
			p.topicPrefix = "personadash"
		}
		clientID := mqttCfg.ClientID
		if clientID == "" {
			clientID = "personadash"
		}

		opts := mqtt.NewClientOptions()
		opts.AddBroker(fmt.Sprintf("tcp://%s", mqttCfg.Broker))
		opts.SetClientID(clientID)
		opts.SetAutoReconnect(true)
		opts.SetConnectRetry(true)
		opts.SetConnectTimeout(10 * time.Second)

		if mqttCfg.Username != "" {
			opts.SetUsername(mqttCfg.Username)
		}
		if mqttCfg.Password != "" {
			opts.SetPassword(mqttCfg.Password)
		}

		p.client = mqtt.NewClient(opts)
		if token := p.client.Connect(); token.Wait() && token.Error() != nil {
			return nil, fmt.Errorf("connecting to MQTT broker: %w", token.Error())
		}
	}

	return p, nil
}

// Message is one retained MQTT publication
type Message struct {
	Topic   string
	Payload string
}

// Messages lays a summary out as topics under prefix: the mean, the record
// count, one topic per persona and cluster, and the full summary as JSON
func Messages(prefix string, s models.Summary) ([]Message, error) {
	full, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding summary: %w", err)
	}

	msgs := []Message{
		{Topic: prefix + "/summary", Payload: string(full)},
		{Topic: prefix + "/records", Payload: strconv.Itoa(s.Records)},
	}
	if s.Classified {
		msgs = append(msgs, Message{Topic: prefix + "/mean_consumption", Payload: fmt.Sprintf("%.2f", s.MeanConsumption)})
	}
	for _, c := range s.Personas {
		msgs = append(msgs, Message{Topic: prefix + "/persona/" + topicSegment(string(c.Persona)), Payload: strconv.Itoa(c.Households)})
	}
	for _, c := range s.Clusters {
		msgs = append(msgs, Message{Topic: prefix + "/cluster/" + topicSegment(c.Cluster), Payload: strconv.Itoa(c.Households)})
	}
	return msgs, nil
}

// topicSegment lowercases a label and replaces characters MQTT treats specially
func topicSegment(s string) string {
	r := strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// HAState is the body of a Home Assistant states API update
type HAState struct {
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes"`
}

// NewHAState builds the sensor state for a summary. The state is the mean
// consumption; persona and cluster counts become attributes.
func NewHAState(s models.Summary) HAState {
	attrs := map[string]any{
		"unit_of_measurement": "kWh",
		"friendly_name":       "Household mean consumption",
		"records":             s.Records,
		"source":              s.Source,
		"run_id":              s.RunID,
	}
	for _, c := range s.Personas {
		attrs[strings.ToLower(string(c.Persona))] = c.Households
	}
	if len(s.Clusters) > 0 {
		clusters := make(map[string]int, len(s.Clusters))
		for _, c := range s.Clusters {
			clusters[c.Cluster] = c.Households
		}
		attrs["clusters"] = clusters
	}

	state := "unknown"
	if s.Classified {
		state = fmt.Sprintf("%.2f", s.MeanConsumption)
	}
	return HAState{State: state, Attributes: attrs}
}

// PublishSummary sends the summary to every enabled sink. Failures from both
// sinks are joined.
func (p *Publisher) PublishSummary(ctx context.Context, s models.Summary) error {
	var errs []error
	if p.client != nil {
		if err := p.publishMQTT(s); err != nil {
			errs = append(errs, err)
		}
	}
	if p.haConfig.Enabled {
		if err := p.publishHA(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) publishMQTT(s models.Summary) error {
	msgs, err := Messages(p.topicPrefix, s)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		token := p.client.Publish(m.Topic, 1, true, m.Payload)
		if !token.WaitTimeout(10*time.Second) {
			return fmt.Errorf("publishing %s: timed out", m.Topic)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing %s: %w", m.Topic, err)
		}
	}
	return nil
}

func (p *Publisher) publishHA(ctx context.Context, s models.Summary) error {
	apiURL := fmt.Sprintf("%s/api/states/%s", strings.TrimRight(p.haConfig.URL, "/"), p.haConfig.EntityID)

	body, err := json.Marshal(NewHAState(s))
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.haConfig.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("HTTP error: status %d, response: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// Close disconnects from the MQTT broker
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}
