package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/freundallein/queuewatch/chassis/config"
	"github.com/freundallein/queuewatch/chassis/queue"
	"github.com/freundallein/queuewatch/chassis/watch"
	"github.com/freundallein/queuewatch/demo"
)

const usage = `usage: producer [flags] <command> [args]

commands:
  profile                       show the credentials profile in use
  queues                        show every queue with all attributes
  list                          list queue urls
  attrs                         show all attributes of the queue
  arn                           show the queue ARN
  set-attr <name> <value>       update a queue attribute
  send <body>                   send a message
  batch <body> [<body>...]      send messages in batches of 10
  receive                       receive messages (--delete to acknowledge them)
  delete-message <handle>       delete a message by receipt handle
  purge                         delete all messages of the queue
  delete-queue                  delete the queue and wait until it is gone
  wait                          wait until the queue is gone
  history                       show recent journal entries
`

var errUsage = errors.New("invalid arguments")

type session struct {
	prog    *demo.Program
	cfg     *config.AppConfig
	out     io.Writer
	stdin   io.Reader
	delete  bool
	limit   int
	profile string
}

func (s *session) queueURL() (string, error) {
	if s.cfg.Queue.URL == "" {
		return "", fmt.Errorf("%w: queue url is not configured, use --queue", errUsage)
	}
	return s.cfg.Queue.URL, nil
}

func (s *session) wait(ctx context.Context, url string) error {
	_, err := s.prog.Wait(ctx, url, s.cfg.Watch.MaxSeconds, s.cfg.Watch.PollInterval, watch.KeyPress(s.stdin))
	return err
}

func (s *session) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: command is required", errUsage)
	}
	command, rest := args[0], args[1:]
	switch command {
	case "profile":
		fmt.Fprintln(s.out, s.profile)
		return nil
	case "queues":
		return s.prog.ShowQueues(ctx)
	case "list":
		_, err := s.prog.ListQueues(ctx)
		return err
	case "history":
		return s.prog.History(ctx, s.limit)
	}

	url, err := s.queueURL()
	if err != nil {
		return err
	}
	switch command {
	case "attrs":
		return s.prog.ShowAllAttributes(ctx, url)
	case "arn":
		arn, err := s.prog.GetQueueArn(ctx, url)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, arn)
		return nil
	case "set-attr":
		if len(rest) != 2 {
			return fmt.Errorf("%w: set-attr takes <name> <value>", errUsage)
		}
		return s.prog.UpdateAttribute(ctx, url, rest[0], rest[1])
	case "send":
		if len(rest) == 0 {
			return fmt.Errorf("%w: send takes <body>", errUsage)
		}
		_, err := s.prog.SendMessage(ctx, url, strings.Join(rest, " "))
		return err
	case "batch":
		if len(rest) == 0 {
			return fmt.Errorf("%w: batch takes at least one <body>", errUsage)
		}
		_, err := s.prog.SendMessageBatch(ctx, url, rest)
		return err
	case "receive":
		msgs, err := s.prog.GetMessage(ctx, url, s.cfg.Queue.WaitTime)
		if err != nil || !s.delete {
			return err
		}
		for _, msg := range msgs {
			if err := s.prog.DeleteMessage(ctx, url, msg); err != nil {
				return err
			}
		}
		return nil
	case "delete-message":
		if len(rest) != 1 {
			return fmt.Errorf("%w: delete-message takes <receipt-handle>", errUsage)
		}
		return s.prog.DeleteMessage(ctx, url, &queue.RecvMessage{Handler: rest[0]})
	case "purge":
		return s.prog.DeleteAllMessages(ctx, url)
	case "delete-queue":
		if err := s.prog.DeleteQueue(ctx, url); err != nil {
			return err
		}
		return s.wait(ctx, url)
	case "wait":
		return s.wait(ctx, url)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}
