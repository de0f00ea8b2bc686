package data

import (
	"context"
	"fmt"

	"fsm-backup/lib/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/sirupsen/logrus"
)

const (
	MetricAttachmentsBackedUp = "AttachmentsBackedUp"
	MetricAttachmentBytes     = "AttachmentBytes"
	MetricDimensionBucket     = "BucketName"
)

// MetricsRepository publishes backup metrics
type MetricsRepository interface {
	RecordBackup(ctx context.Context, metrics models.BackupMetrics) error
}

type CloudWatchClientInterface interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// MetricsDao writes custom CloudWatch metrics. With an empty Namespace it does nothing.
type MetricsDao struct {
	CloudWatch CloudWatchClientInterface
	Namespace  string
	Logger     *logrus.Logger
}

func (dao *MetricsDao) RecordBackup(ctx context.Context, metrics models.BackupMetrics) error {
	if dao.Namespace == "" {
		return nil
	}

	dimensions := []types.Dimension{{Name: aws.String(MetricDimensionBucket), Value: aws.String(metrics.Bucket)}}
	_, err := dao.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(dao.Namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(MetricAttachmentsBackedUp),
				Dimensions: dimensions,
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(1),
			},
			{
				MetricName: aws.String(MetricAttachmentBytes),
				Dimensions: dimensions,
				Unit:       types.StandardUnitBytes,
				Value:      aws.Float64(float64(metrics.Bytes)),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to put backup metrics: %w", err)
	}
	return nil
}
