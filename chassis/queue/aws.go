package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"

	log "github.com/freundallein/queuewatch/chassis/logging"
	"github.com/freundallein/queuewatch/chassis/metrics"
)

const (
	maxBatchSize   = 10
	maxWaitSeconds = 20
)

// AWSQueue implementation
type AWSQueue struct {
	api sqsiface.SQSAPI
}

// InitAWSQueue builds a client authenticated with a shared credentials profile.
func InitAWSQueue(cfg Config) (*AWSQueue, error) {
	awsCfg := &aws.Config{
		Region:      aws.String(cfg.Region),
		Credentials: credentials.NewSharedCredentials(cfg.CredentialsFile, cfg.CredentialsProfile),
		MaxRetries:  aws.Int(cfg.Retries),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	ssn, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}
	return NewAWSQueue(sqs.New(ssn)), nil
}

// NewAWSQueue wraps an existing SQS API.
func NewAWSQueue(api sqsiface.SQSAPI) *AWSQueue {
	return &AWSQueue{api: api}
}

// ListQueues returns every queue url of the account, following pagination.
func (q *AWSQueue) ListQueues(ctx context.Context) ([]string, error) {
	var urls []string
	err := q.api.ListQueuesPagesWithContext(ctx, &sqs.ListQueuesInput{}, func(page *sqs.ListQueuesOutput, _ bool) bool {
		urls = append(urls, aws.StringValueSlice(page.QueueUrls)...)
		return true
	})
	metrics.ObserveOperation("list_queues", err)
	if err != nil {
		return nil, translate(err)
	}
	log.WithFields(log.Fields{
		"event": "list_queues",
		"queue": "aws_sqs",
	}).Debug(len(urls))
	return urls, nil
}

// GetAttributes ...
func (q *AWSQueue) GetAttributes(ctx context.Context, queueURL string, names ...string) (map[string]string, error) {
	if len(names) == 0 {
		names = []string{AttrAll}
	}
	for _, name := range names {
		if !ValidAttribute(name) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidAttribute, name)
		}
	}
	out, err := q.api.GetQueueAttributesWithContext(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(queueURL),
		AttributeNames: aws.StringSlice(names),
	})
	metrics.ObserveOperation("get_attributes", err)
	if err != nil {
		return nil, translate(err)
	}
	return aws.StringValueMap(out.Attributes), nil
}

// SetAttributes ...
func (q *AWSQueue) SetAttributes(ctx context.Context, queueURL string, attributes map[string]string) error {
	for name := range attributes {
		if !ValidAttribute(name) {
			return fmt.Errorf("%w: %s", ErrInvalidAttribute, name)
		}
		if !WritableAttribute(name) {
			return fmt.Errorf("%w: %s", ErrReadOnlyAttribute, name)
		}
	}
	_, err := q.api.SetQueueAttributesWithContext(ctx, &sqs.SetQueueAttributesInput{
		QueueUrl:   aws.String(queueURL),
		Attributes: aws.StringMap(attributes),
	})
	metrics.ObserveOperation("set_attributes", err)
	if err != nil {
		return translate(err)
	}
	return nil
}

// SendMessage returns the message id assigned by the service.
func (q *AWSQueue) SendMessage(ctx context.Context, queueURL string, body string) (string, error) {
	msg := &sqs.SendMessageInput{
		MessageBody: aws.String(body),     // Required
		QueueUrl:    aws.String(queueURL), // Required
	}
	sendResponse, err := q.api.SendMessageWithContext(ctx, msg)
	metrics.ObserveOperation("send_message", err)
	if err != nil {
		return "", translate(err)
	}
	messageID := aws.StringValue(sendResponse.MessageId)
	log.WithFields(log.Fields{
		"event": "send_message",
		"queue": "aws_sqs",
	}).Debug(messageID)
	return messageID, nil
}

// SendMessageBatch sends up to 10 entries in a single call.
func (q *AWSQueue) SendMessageBatch(ctx context.Context, queueURL string, entries []BatchEntry) (*BatchResult, error) {
	if len(entries) == 0 || len(entries) > maxBatchSize {
		return nil, fmt.Errorf("batch size must be between 1 and %d, got %d", maxBatchSize, len(entries))
	}
	requestEntries := make([]*sqs.SendMessageBatchRequestEntry, 0, len(entries))
	for _, entry := range entries {
		requestEntries = append(requestEntries, &sqs.SendMessageBatchRequestEntry{
			Id:          aws.String(entry.ID),
			MessageBody: aws.String(entry.Body),
		})
	}
	out, err := q.api.SendMessageBatchWithContext(ctx, &sqs.SendMessageBatchInput{
		QueueUrl: aws.String(queueURL),
		Entries:  requestEntries,
	})
	metrics.ObserveOperation("send_message_batch", err)
	if err != nil {
		return nil, translate(err)
	}
	result := &BatchResult{}
	for _, entry := range out.Successful {
		result.Successful = append(result.Successful, BatchSuccess{
			ID:        aws.StringValue(entry.Id),
			MessageID: aws.StringValue(entry.MessageId),
		})
	}
	for _, entry := range out.Failed {
		result.Failed = append(result.Failed, BatchFailure{
			ID:          aws.StringValue(entry.Id),
			Code:        aws.StringValue(entry.Code),
			Message:     aws.StringValue(entry.Message),
			SenderFault: aws.BoolValue(entry.SenderFault),
		})
	}
	return result, nil
}

// ReceiveMessages returns an empty slice when nothing arrives within waitSeconds.
func (q *AWSQueue) ReceiveMessages(ctx context.Context, queueURL string, maxCount int, waitSeconds int) ([]*RecvMessage, error) {
	if maxCount < 1 {
		maxCount = 1
	} else if maxCount > maxBatchSize {
		maxCount = maxBatchSize
	}
	if waitSeconds < 0 {
		waitSeconds = 0
	} else if waitSeconds > maxWaitSeconds {
		waitSeconds = maxWaitSeconds
	}
	receiveResponse, err := q.api.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(queueURL),
		MaxNumberOfMessages: aws.Int64(int64(maxCount)),
		WaitTimeSeconds:     aws.Int64(int64(waitSeconds)),
		AttributeNames:      aws.StringSlice([]string{AttrAll}),
	})
	metrics.ObserveOperation("receive_message", err)
	if err != nil {
		return nil, translate(err)
	}
	messages := make([]*RecvMessage, 0, len(receiveResponse.Messages))
	for _, m := range receiveResponse.Messages {
		msg := &RecvMessage{
			ID:         aws.StringValue(m.MessageId),
			Body:       aws.StringValue(m.Body),
			Handler:    aws.StringValue(m.ReceiptHandle),
			Attributes: aws.StringValueMap(m.Attributes),
		}
		log.WithFields(log.Fields{
			"event": "receive_message",
			"queue": "aws_sqs",
		}).Debug(msg.ID)
		messages = append(messages, msg)
	}
	return messages, nil
}

// DeleteMessage acknowledges a single delivery by its receipt handle.
func (q *AWSQueue) DeleteMessage(ctx context.Context, queueURL string, receiptHandle string) error {
	_, err := q.api.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	metrics.ObserveOperation("delete_message", err)
	if err != nil {
		return translate(err)
	}
	log.WithFields(log.Fields{
		"event": "delete_message",
		"queue": "aws_sqs",
	}).Debug(receiptHandle)
	return nil
}

// DeleteQueue ...
func (q *AWSQueue) DeleteQueue(ctx context.Context, queueURL string) error {
	_, err := q.api.DeleteQueueWithContext(ctx, &sqs.DeleteQueueInput{
		QueueUrl: aws.String(queueURL),
	})
	metrics.ObserveOperation("delete_queue", err)
	if err != nil {
		return translate(err)
	}
	return nil
}

// PurgeQueue deletes every message of the queue. The service may take up to 60s to finish.
func (q *AWSQueue) PurgeQueue(ctx context.Context, queueURL string) error {
	_, err := q.api.PurgeQueueWithContext(ctx, &sqs.PurgeQueueInput{
		QueueUrl: aws.String(queueURL),
	})
	metrics.ObserveOperation("purge_queue", err)
	if err != nil {
		return translate(err)
	}
	return nil
}

func translate(err error) error {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) && awsErr.Code() == sqs.ErrCodeQueueDoesNotExist {
		return fmt.Errorf("%w: %s", ErrQueueNotFound, awsErr.Message())
	}
	return err
}
