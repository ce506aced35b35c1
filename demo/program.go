// Package demo walks through the queue service API and prints every result to the console.
package demo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"

	log "github.com/freundallein/queuewatch/chassis/logging"
	"github.com/freundallein/queuewatch/chassis/queue"
	"github.com/freundallein/queuewatch/chassis/storage"
	"github.com/freundallein/queuewatch/chassis/watch"
)

const maxBatchEntries = 10

// Config ...
type Config struct {
	Queue       queue.Client
	Journal     storage.Journal
	Out         io.Writer
	MaxMessages int
}

// Program ...
type Program struct {
	cli         queue.Client
	journal     storage.Journal
	out         io.Writer
	maxMessages int
}

// New ...
func New(cfg *Config) *Program {
	journal := cfg.Journal
	if journal == nil {
		journal = storage.NopJournal{}
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	maxMessages := cfg.MaxMessages
	if maxMessages <= 0 {
		maxMessages = 1
	}
	return &Program{
		cli:         cfg.Queue,
		journal:     journal,
		out:         out,
		maxMessages: maxMessages,
	}
}

// ShowQueues prints every queue with all of its attributes.
func (p *Program) ShowQueues(ctx context.Context) error {
	urls, err := p.cli.ListQueues(ctx)
	p.record(ctx, "list_queues", "", "", err, map[string]string{"queues": fmt.Sprint(len(urls))})
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out)
	for _, url := range urls {
		if err := p.ShowAllAttributes(ctx, url); err != nil {
			return err
		}
	}
	return nil
}

// ShowAllAttributes ...
func (p *Program) ShowAllAttributes(ctx context.Context, queueURL string) error {
	attrs, err := p.cli.GetAttributes(ctx, queueURL, queue.AttrAll)
	p.record(ctx, "get_attributes", queueURL, "", err, map[string]string{"attributes": queue.AttrAll})
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Queue: %s\n", queueURL)
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(p.out, "\t%s: %s\n", name, attrs[name])
	}
	return nil
}

// ListQueues ...
func (p *Program) ListQueues(ctx context.Context) ([]string, error) {
	urls, err := p.cli.ListQueues(ctx)
	p.record(ctx, "list_queues", "", "", err, map[string]string{"queues": fmt.Sprint(len(urls))})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(p.out, "\nList of queues:")
	for _, url := range urls {
		fmt.Fprintf(p.out, "- %s\n", url)
	}
	return urls, nil
}

// GetMessage reads up to the configured number of messages, waiting at most waitTime seconds.
func (p *Program) GetMessage(ctx context.Context, queueURL string, waitTime int) ([]*queue.RecvMessage, error) {
	msgs, err := p.cli.ReceiveMessages(ctx, queueURL, p.maxMessages, waitTime)
	p.record(ctx, "receive_message", queueURL, "", err, map[string]string{
		"received": fmt.Sprint(len(msgs)),
	})
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		fmt.Fprintln(p.out, "No messages received.")
		return msgs, nil
	}
	for _, msg := range msgs {
		fmt.Fprintf(p.out, "Message %s\n  Body: %s\n  ReceiptHandle: %s\n", msg.ID, msg.Body, msg.Handler)
	}
	return msgs, nil
}

// GetQueueArn ...
func (p *Program) GetQueueArn(ctx context.Context, queueURL string) (string, error) {
	attrs, err := p.cli.GetAttributes(ctx, queueURL, queue.AttrQueueArn)
	p.record(ctx, "get_attributes", queueURL, "", err, map[string]string{"attributes": queue.AttrQueueArn})
	if err != nil {
		return "", err
	}
	return attrs[queue.AttrQueueArn], nil
}

// UpdateAttribute sets a single attribute, the name is checked against the known attribute set first.
func (p *Program) UpdateAttribute(ctx context.Context, queueURL, attribute, value string) error {
	if !queue.ValidAttribute(attribute) {
		return fmt.Errorf("%w: %s", queue.ErrInvalidAttribute, attribute)
	}
	err := p.cli.SetAttributes(ctx, queueURL, map[string]string{attribute: value})
	p.record(ctx, "set_attributes", queueURL, "", err, map[string]string{attribute: value})
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Attribute %s of queue %s set to %s\n", attribute, queueURL, value)
	return nil
}

// DeleteQueue ...
func (p *Program) DeleteQueue(ctx context.Context, queueURL string) error {
	fmt.Fprintf(p.out, "Deleting queue %s...\n", queueURL)
	err := p.cli.DeleteQueue(ctx, queueURL)
	p.record(ctx, "delete_queue", queueURL, "", err, nil)
	if err != nil {
		return err
	}
	fmt.Fprintf(p.out, "Queue %s has been deleted.\n", queueURL)
	return nil
}

// Wait blocks for up to maxSeconds until the queue is gone or cancelled() turns true.
func (p *Program) Wait(ctx context.Context, queueURL string, maxSeconds, pollInterval int, cancelled func() bool) (watch.Reason, error) {
	fmt.Fprintf(p.out, "Waiting for up to %d seconds.\n", maxSeconds)
	fmt.Fprintln(p.out, "Press Enter to stop waiting. (Response might be slightly delayed.)")
	watcher := watch.NewPollingWatcher(p.cli.ListQueues,
		watch.WithCancelSignal(cancelled),
		watch.WithProgress(p.out),
	)
	reason, err := watcher.Wait(ctx, queueURL, maxSeconds, pollInterval)
	fmt.Fprintln(p.out)
	p.record(ctx, "wait", queueURL, "", err, map[string]string{"reason": reason.String()})
	if err != nil {
		return reason, err
	}
	switch reason {
	case watch.ResourceGone:
		fmt.Fprintf(p.out, "Queue %s is gone.\n", queueURL)
	case watch.Cancelled:
		fmt.Fprintln(p.out, "Stopped waiting.")
	case watch.TimedOut:
		fmt.Fprintf(p.out, "Queue %s still exists after %d seconds.\n", queueURL, maxSeconds)
	}
	return reason, nil
}

// SendMessage ...
func (p *Program) SendMessage(ctx context.Context, queueURL, body string) (string, error) {
	messageID, err := p.cli.SendMessage(ctx, queueURL, body)
	p.record(ctx, "send_message", queueURL, messageID, err, nil)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(p.out, "Message added to queue\n  %s\n", queueURL)
	fmt.Fprintf(p.out, "MessageId: %s\n", messageID)
	return messageID, nil
}

// SendMessageBatch sends bodies in batches of 10. Failed entries are reported, not returned as error.
func (p *Program) SendMessageBatch(ctx context.Context, queueURL string, bodies []string) (*queue.BatchResult, error) {
	if len(bodies) == 0 {
		return nil, errors.New("nothing to send")
	}
	fmt.Fprintf(p.out, "\nSending a batch of messages to queue\n  %s\n", queueURL)
	total := &queue.BatchResult{}
	for start := 0; start < len(bodies); start += maxBatchEntries {
		end := start + maxBatchEntries
		if end > len(bodies) {
			end = len(bodies)
		}
		entries := make([]queue.BatchEntry, 0, end-start)
		for _, body := range bodies[start:end] {
			entries = append(entries, queue.BatchEntry{ID: uuid.NewString(), Body: body})
		}
		res, err := p.cli.SendMessageBatch(ctx, queueURL, entries)
		if err != nil {
			p.record(ctx, "send_message_batch", queueURL, "", err, nil)
			return total, err
		}
		for _, entry := range res.Successful {
			fmt.Fprintf(p.out, "Message %s successfully queued.\n", entry.ID)
			p.record(ctx, "send_message_batch", queueURL, entry.MessageID, nil, map[string]string{"entry": entry.ID})
		}
		for _, entry := range res.Failed {
			fmt.Fprintf(p.out, "Message %s failed: %s %s\n", entry.ID, entry.Code, entry.Message)
			p.record(ctx, "send_message_batch", queueURL, "", errors.New(entry.Code), map[string]string{
				"entry":   entry.ID,
				"message": entry.Message,
			})
		}
		total.Successful = append(total.Successful, res.Successful...)
		total.Failed = append(total.Failed, res.Failed...)
	}
	return total, nil
}

// DeleteAllMessages purges the queue.
func (p *Program) DeleteAllMessages(ctx context.Context, queueURL string) error {
	fmt.Fprintf(p.out, "\nPurging messages from queue\n  %s...\n", queueURL)
	err := p.cli.PurgeQueue(ctx, queueURL)
	p.record(ctx, "purge_queue", queueURL, "", err, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(p.out, "Purge requested, it may take up to 60 seconds to complete.")
	return nil
}

// DeleteMessage ...
func (p *Program) DeleteMessage(ctx context.Context, queueURL string, message *queue.RecvMessage) error {
	name := message.ID
	if name == "" {
		name = message.Handler
	}
	fmt.Fprintf(p.out, "\nDeleting message %s from queue...\n", name)
	err := p.cli.DeleteMessage(ctx, queueURL, message.Handler)
	p.record(ctx, "delete_message", queueURL, message.ID, err, nil)
	return err
}

// History prints the newest journal entries.
func (p *Program) History(ctx context.Context, limit int) error {
	entries, err := p.journal.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(p.out, "Journal is empty.")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(p.out, "%s %-18s %-7s %s %s\n",
			entry.CreatedDt.Format("2006-01-02 15:04:05"),
			entry.Operation,
			entry.Status,
			entry.QueueURL,
			entry.MessageID,
		)
	}
	return nil
}

// record keeps the journal best-effort, a broken journal never fails a queue call.
func (p *Program) record(ctx context.Context, operation, queueURL, messageID string, opErr error, detail map[string]string) {
	entry := &storage.Entry{
		Operation: operation,
		QueueURL:  queueURL,
		MessageID: messageID,
		Status:    storage.SUCCESS,
		Detail:    detail,
	}
	if opErr != nil {
		entry.Status = storage.ERROR
		if entry.Detail == nil {
			entry.Detail = map[string]string{}
		}
		entry.Detail["error"] = opErr.Error()
	}
	err := p.journal.Record(ctx, entry)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrDuplicateEntry):
		log.WithFields(log.Fields{
			"event":     "duplicated_journal_entry",
			"operation": operation,
			"messageID": messageID,
		}).Warn("operation already journaled")
	default:
		log.WithFields(log.Fields{
			"event":     "journal_failed",
			"operation": operation,
		}).Error(err)
	}
}
