package sink

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/vue-exporter/internal/config"
)

// MQTTSink republishes each sample to an MQTT broker as an individual watt
// topic. Publish failures are logged and swallowed; the next cycle re-sends
// fresh values anyway.
type MQTTSink struct {
	client   mqtt.Client
	prefix   string
	qos      byte
	retained bool
}

// AvailabilityTopic returns the topic carrying the online/offline flag,
// also used for the Last Will and Testament message.
func AvailabilityTopic(prefix string) string {
	return fmt.Sprintf("%s/availability", prefix)
}

// WattsTopic returns the topic for one channel's wattage.
func WattsTopic(prefix string, deviceGID int, channelNumber string) string {
	return fmt.Sprintf("%s/%d/%s/watts", prefix, deviceGID, channelNumber)
}

// NewMQTTSink creates a connected MQTT client with an offline LWT, then
// announces the exporter online.
func NewMQTTSink(cfg config.MQTTConfig) (*MQTTSink, error) {
	lwtTopic := AvailabilityTopic(cfg.TopicPrefix)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetWill(lwtTopic, "offline", cfg.QOS, true)

	if cfg.TLSCACert != "" {
		tlsCfg, err := newTLSConfig(cfg.TLSCACert)
		if err != nil {
			return nil, fmt.Errorf("loading TLS CA cert %q: %w", cfg.TLSCACert, err)
		}
		opts.SetTLSConfig(tlsCfg)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %q: %w", cfg.Broker, token.Error())
	}

	s := &MQTTSink{
		client:   client,
		prefix:   cfg.TopicPrefix,
		qos:      cfg.QOS,
		retained: cfg.Retained,
	}
	s.publish(lwtTopic, "online", true)
	return s, nil
}

// Record publishes the sample's wattage to its channel topic.
func (s *MQTTSink) Record(sm Sample) {
	topic := WattsTopic(s.prefix, sm.DeviceGID, sm.ChannelNumber)
	s.publish(topic, strconv.FormatFloat(sm.Watts, 'f', -1, 64), s.retained)
}

// Close announces offline and disconnects from the broker gracefully.
func (s *MQTTSink) Close() error {
	s.publish(AvailabilityTopic(s.prefix), "offline", true)
	s.client.Disconnect(250)
	return nil
}

func (s *MQTTSink) publish(topic, payload string, retained bool) {
	token := s.client.Publish(topic, s.qos, retained, payload)
	if token.Wait() && token.Error() != nil {
		log.Printf("mqtt: publishing %s: %v", topic, token.Error())
	}
}

// newTLSConfig builds a *tls.Config that trusts caFile as an additional CA.
func newTLSConfig(caFile string) (*tls.Config, error) {
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("reading CA cert: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA cert from %q", caFile)
	}
	return &tls.Config{RootCAs: pool}, nil
}
