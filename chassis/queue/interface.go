package queue

import (
	"context"
	"errors"
)

var (
	// ErrQueueNotFound is returned when the queue url is unknown to the service.
	ErrQueueNotFound = errors.New("queue does not exist")
	// ErrInvalidAttribute is returned for attribute names outside of the known set.
	ErrInvalidAttribute = errors.New("invalid queue attribute")
	// ErrReadOnlyAttribute is returned on attempts to set a service maintained attribute.
	ErrReadOnlyAttribute = errors.New("queue attribute is read-only")
)

// Config - unified configuration for queue service
type Config struct {
	//AWS specific
	Region             string
	CredentialsFile    string
	CredentialsProfile string
	Endpoint           string
	Retries            int
}

// RecvMessage unified presentation for queue message
type RecvMessage struct {
	ID         string
	Body       string
	Handler    string
	Attributes map[string]string
}

// BatchEntry is a single message of a batch send, ID must be unique within the batch.
type BatchEntry struct {
	ID   string
	Body string
}

// BatchSuccess ...
type BatchSuccess struct {
	ID        string
	MessageID string
}

// BatchFailure ...
type BatchFailure struct {
	ID          string
	Code        string
	Message     string
	SenderFault bool
}

// BatchResult splits a batch send into delivered and rejected entries.
type BatchResult struct {
	Successful []BatchSuccess
	Failed     []BatchFailure
}

// Client interface for queue interaction (SQS Based)
type Client interface {
	ListQueues(ctx context.Context) ([]string, error)
	GetAttributes(ctx context.Context, queueURL string, names ...string) (map[string]string, error)
	SetAttributes(ctx context.Context, queueURL string, attributes map[string]string) error
	SendMessage(ctx context.Context, queueURL string, body string) (string, error)
	SendMessageBatch(ctx context.Context, queueURL string, entries []BatchEntry) (*BatchResult, error)
	ReceiveMessages(ctx context.Context, queueURL string, maxCount int, waitSeconds int) ([]*RecvMessage, error)
	DeleteMessage(ctx context.Context, queueURL string, receiptHandle string) error
	DeleteQueue(ctx context.Context, queueURL string) error
	PurgeQueue(ctx context.Context, queueURL string) error
}
