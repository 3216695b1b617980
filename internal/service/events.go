package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
)

const (
	EventPlanGenerated = "meal_plan.generated"
	DefaultEventTopic  = "meal-plan-events"
)

// SlotOutcome is one slot's line in a generated-plan event.
type SlotOutcome struct {
	Name             string           `json:"name"`
	Outcome          mealplan.Outcome `json:"outcome"`
	TargetCalories   float64          `json:"target_calories"`
	AchievedCalories float64          `json:"achieved_calories"`
}

// PlanGeneratedEvent is published after a plan is generated and stored.
type PlanGeneratedEvent struct {
	Type        string        `json:"type"`
	PlanID      uuid.UUID     `json:"plan_id"`
	PatientID   uuid.UUID     `json:"patient_id"`
	GeneratedAt time.Time     `json:"generated_at"`
	Slots       []SlotOutcome `json:"slots"`
}

// NewPlanGeneratedEvent summarises a generation run.
func NewPlanGeneratedEvent(plan *models.MealPlan, report mealplan.Report, at time.Time) PlanGeneratedEvent {
	slots := make([]SlotOutcome, 0, len(report.Slots))
	for _, s := range report.Slots {
		slots = append(slots, SlotOutcome{
			Name:             s.Name,
			Outcome:          s.Outcome,
			TargetCalories:   s.TargetCalories,
			AchievedCalories: s.Achieved.Calories,
		})
	}
	return PlanGeneratedEvent{
		Type:        EventPlanGenerated,
		PlanID:      plan.ID,
		PatientID:   plan.PatientID,
		GeneratedAt: at.UTC(),
		Slots:       slots,
	}
}

// KafkaPublisher sends plan events through a sarama SyncProducer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

var _ EventPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher connects a producer to the comma-separated broker list
func NewKafkaPublisher(brokers, topic string) (*KafkaPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Retry.Backoff = 100 * time.Millisecond
	cfg.Producer.Return.Successes = true
	cfg.Net.DialTimeout = 30 * time.Second
	cfg.Net.ReadTimeout = 30 * time.Second
	cfg.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(brokers, ",")
	producer, err := sarama.NewSyncProducer(brokerList, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.Printf("[PlanEvents] Kafka producer connected to %v", brokerList)
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer.
func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultEventTopic
	}
	return &KafkaPublisher{producer: producer, topic: topic}
}

// PublishGenerated sends the event keyed by plan id, so one plan's events
// stay on one partition.
func (p *KafkaPublisher) PublishGenerated(ctx context.Context, event PlanGeneratedEvent) error {
	if p.producer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}

	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.PlanID.String()),
		Value: sarama.ByteEncoder(msg),
	})
	if err != nil {
		return fmt.Errorf("failed to send event to topic %s: %w", p.topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
