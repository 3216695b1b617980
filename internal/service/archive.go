package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nutriflow/backend/internal/mealplan"
	"github.com/nutriflow/backend/internal/models"
)

// S3PutObjectAPI is the single S3 call the archiver makes.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PlanSnapshot is the archived document.
type PlanSnapshot struct {
	ArchivedAt time.Time        `json:"archived_at"`
	MealPlan   *models.MealPlan `json:"meal_plan"`
	Report     mealplan.Report  `json:"report"`
}

// S3Archiver writes plan snapshots to an S3 bucket
type S3Archiver struct {
	client S3PutObjectAPI
	bucket string
}

var _ PlanArchiver = (*S3Archiver)(nil)

// NewS3Archiver creates a new S3Archiver instance
func NewS3Archiver(client S3PutObjectAPI, bucket string) *S3Archiver {
	return &S3Archiver{client: client, bucket: bucket}
}

// ArchiveKey is the object key of a plan snapshot taken at at.
func ArchiveKey(planID fmt.Stringer, at time.Time) string {
	return fmt.Sprintf("meal-plans/%s/%s.json", planID.String(), at.UTC().Format(time.RFC3339))
}

// Archive uploads the plan and its report and returns the object key
func (a *S3Archiver) Archive(ctx context.Context, plan *models.MealPlan, report mealplan.Report, at time.Time) (string, error) {
	data, err := json.Marshal(PlanSnapshot{ArchivedAt: at.UTC(), MealPlan: plan, Report: report})
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan snapshot: %w", err)
	}

	key := ArchiveKey(plan.ID, at)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Printf("[PlanArchive] Stored s3://%s/%s", a.bucket, key)
	return key, nil
}
