package producers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/chrisdamba/fleetops/internal/models"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

func NewSaramaConfig(cfg models.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 30 * time.Second
	}
	saramaConfig.Net.DialTimeout = dial
	saramaConfig.Net.ReadTimeout = dial
	saramaConfig.Net.WriteTimeout = dial

	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	} else {
		saramaConfig.Consumer.Group.Session.Timeout = 45 * time.Second
	}
	return saramaConfig
}

func NewSaramaProducer(cfg models.KafkaConfig, logger *zap.Logger) (*SaramaProducer, error) {
	brokerList := strings.Split(cfg.BrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	logger.Info("Sarama producer created", zap.Strings("brokers", brokerList))
	return &SaramaProducer{producer: producer, logger: logger}, nil
}

// NewSaramaProducerFromClient wraps an existing producer, typically a mock.
func NewSaramaProducerFromClient(producer sarama.SyncProducer, logger *zap.Logger) *SaramaProducer {
	return &SaramaProducer{producer: producer, logger: logger}
}

func (s *SaramaProducer) WriteMessage(topic string, msg []byte) error {
	return s.send(&sarama.ProducerMessage{Topic: topic, Value: sarama.ByteEncoder(msg)})
}

func (s *SaramaProducer) WriteKeyedMessage(topic, key string, msg []byte) error {
	return s.send(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(msg),
	})
}

func (s *SaramaProducer) send(m *sarama.ProducerMessage) error {
	if s.producer == nil {
		return errors.New("sarama producer is not initialized")
	}
	partition, offset, err := s.producer.SendMessage(m)
	if err != nil {
		return fmt.Errorf("send to topic %s: %w", m.Topic, err)
	}
	s.logger.Debug("message sent",
		zap.String("topic", m.Topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
