package output

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog/log"
)

type KafkaOutput struct {
	producer sarama.SyncProducer
}

func NewKafkaOutput(brokers []string) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = "menuboard"
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Info().Strs("brokers", brokers).Msg("Kafka producer created")
	return NewKafkaOutputWithProducer(producer), nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer) *KafkaOutput {
	return &KafkaOutput{producer: producer}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	partition, offset, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}
	log.Debug().Str("topic", topic).Int32("partition", partition).Int64("offset", offset).Msg("Event delivered")
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer == nil {
		return nil
	}
	err := k.producer.Close()
	k.producer = nil
	return err
}
