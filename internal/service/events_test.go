package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() mealplan.Report {
	return mealplan.Report{
		Objective: mealplan.ObjectiveHypertrophy,
		Slots: []mealplan.SlotReport{
			{Name: "Breakfast", Outcome: mealplan.OutcomeFilled, TargetCalories: 500, Achieved: models.Macros{Calories: 480}},
			{Name: "Lunch", Outcome: mealplan.OutcomePrefilled, TargetCalories: 700, Achieved: models.Macros{Calories: 690}},
		},
	}
}

func TestNewPlanGeneratedEvent(t *testing.T) {
	plan := &models.MealPlan{ID: uuid.New(), PatientID: uuid.New()}
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))

	event := NewPlanGeneratedEvent(plan, testReport(), at)

	assert.Equal(t, EventPlanGenerated, event.Type)
	assert.Equal(t, plan.ID, event.PlanID)
	assert.Equal(t, plan.PatientID, event.PatientID)
	assert.Equal(t, time.UTC, event.GeneratedAt.Location())
	require.Len(t, event.Slots, 2)
	assert.Equal(t, 480.0, event.Slots[0].AchievedCalories)
	assert.Equal(t, mealplan.OutcomePrefilled, event.Slots[1].Outcome)
}

func TestKafkaPublisher_PublishGenerated(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewKafkaPublisherWithProducer(producer, "")

	plan := &models.MealPlan{ID: uuid.New(), PatientID: uuid.New()}
	event := NewPlanGeneratedEvent(plan, testReport(), time.Now())

	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != DefaultEventTopic {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != plan.ID.String() {
			return fmt.Errorf("unexpected key %q", key)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got PlanGeneratedEvent
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.PlanID != plan.ID || len(got.Slots) != 2 {
			return fmt.Errorf("unexpected event %+v", got)
		}
		return nil
	})

	require.NoError(t, publisher.PublishGenerated(context.Background(), event))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := NewKafkaPublisherWithProducer(producer, "plans")

	producer.ExpectSendMessageAndFail(errors.New("leader not available"))

	err := publisher.PublishGenerated(context.Background(), PlanGeneratedEvent{PlanID: uuid.New()})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "topic plans")
	require.NoError(t, publisher.Close())
}
