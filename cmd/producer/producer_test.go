package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freundallein/queuewatch/chassis/config"
	"github.com/freundallein/queuewatch/chassis/queue"
	"github.com/freundallein/queuewatch/demo"
)

const testURL = "http://localhost:4566/000000000000/orders"

type stubClient struct {
	queue.Client
	attrs    map[string]string
	messages []*queue.RecvMessage
	sent     []string
	deleted  []string
	set      map[string]string
}

func (c *stubClient) ListQueues(context.Context) ([]string, error) {
	return []string{testURL}, nil
}

func (c *stubClient) GetAttributes(_ context.Context, _ string, names ...string) (map[string]string, error) {
	return c.attrs, nil
}

func (c *stubClient) SetAttributes(_ context.Context, _ string, attrs map[string]string) error {
	c.set = attrs
	return nil
}

func (c *stubClient) SendMessage(_ context.Context, _ string, body string) (string, error) {
	c.sent = append(c.sent, body)
	return "mid-1", nil
}

func (c *stubClient) ReceiveMessages(context.Context, string, int, int) ([]*queue.RecvMessage, error) {
	return c.messages, nil
}

func (c *stubClient) DeleteMessage(_ context.Context, _ string, handle string) error {
	c.deleted = append(c.deleted, handle)
	return nil
}

func newSession(cli queue.Client, out *bytes.Buffer) *session {
	cfg := config.Default()
	cfg.Queue.URL = testURL
	return &session{
		prog:    demo.New(&demo.Config{Queue: cli, Out: out}),
		cfg:     cfg,
		out:     out,
		stdin:   strings.NewReader(""),
		limit:   10,
		profile: "profile my_profile",
	}
}

func TestRunRequiresCommand(t *testing.T) {
	s := newSession(&stubClient{}, &bytes.Buffer{})
	err := s.run(context.Background(), nil)
	require.ErrorIs(t, err, errUsage)

	err = s.run(context.Background(), []string{"explode"})
	require.ErrorIs(t, err, errUsage)
}

func TestRunRequiresQueueURL(t *testing.T) {
	s := newSession(&stubClient{}, &bytes.Buffer{})
	s.cfg.Queue.URL = ""
	require.ErrorIs(t, s.run(context.Background(), []string{"arn"}), errUsage)
	// listing does not need a queue
	require.NoError(t, s.run(context.Background(), []string{"list"}))
}

func TestRunArn(t *testing.T) {
	out := &bytes.Buffer{}
	cli := &stubClient{attrs: map[string]string{queue.AttrQueueArn: "arn:aws:sqs:us-east-1:000000000000:orders"}}
	s := newSession(cli, out)
	require.NoError(t, s.run(context.Background(), []string{"arn"}))
	assert.Contains(t, out.String(), "arn:aws:sqs:us-east-1:000000000000:orders")
}

func TestRunSetAttr(t *testing.T) {
	cli := &stubClient{}
	s := newSession(cli, &bytes.Buffer{})
	require.ErrorIs(t, s.run(context.Background(), []string{"set-attr", "DelaySeconds"}), errUsage)

	require.NoError(t, s.run(context.Background(), []string{"set-attr", "DelaySeconds", "5"}))
	assert.Equal(t, map[string]string{"DelaySeconds": "5"}, cli.set)

	err := s.run(context.Background(), []string{"set-attr", "Colour", "red"})
	require.ErrorIs(t, err, queue.ErrInvalidAttribute)
}

func TestRunSendJoinsArgs(t *testing.T) {
	cli := &stubClient{}
	s := newSession(cli, &bytes.Buffer{})
	require.NoError(t, s.run(context.Background(), []string{"send", "hello", "world"}))
	assert.Equal(t, []string{"hello world"}, cli.sent)
}

func TestRunReceiveDelete(t *testing.T) {
	cli := &stubClient{messages: []*queue.RecvMessage{
		{ID: "m1", Body: "a", Handler: "h1"},
		{ID: "m2", Body: "b", Handler: "h2"},
	}}
	s := newSession(cli, &bytes.Buffer{})
	require.NoError(t, s.run(context.Background(), []string{"receive"}))
	assert.Empty(t, cli.deleted)

	s.delete = true
	require.NoError(t, s.run(context.Background(), []string{"receive"}))
	assert.Equal(t, []string{"h1", "h2"}, cli.deleted)
}

func TestRunProfileAndHistory(t *testing.T) {
	out := &bytes.Buffer{}
	s := newSession(&stubClient{}, out)
	require.NoError(t, s.run(context.Background(), []string{"profile"}))
	require.NoError(t, s.run(context.Background(), []string{"history"}))
	assert.Contains(t, out.String(), "profile my_profile")
	assert.Contains(t, out.String(), "Journal is empty.")
}

func TestBindFlagsOverrideConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Queue.URL = "from-file"
	fs := pflag.NewFlagSet("producer", pflag.ContinueOnError)
	opts := bindFlags(fs, cfg)

	err := fs.Parse([]string{"--max-seconds", "5", "-q", testURL, "--delete", "wait"})
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Watch.MaxSeconds)
	assert.Equal(t, testURL, cfg.Queue.URL)
	assert.Equal(t, 1, cfg.Watch.PollInterval)
	assert.True(t, opts.deleteReceived)
	assert.Equal(t, 20, opts.limit)
	assert.Equal(t, []string{"wait"}, fs.Args())
}

func TestPrepareProfile(t *testing.T) {
	cfg := config.Default()
	cfg.AWS.CredentialsFile = filepath.Join(t.TempDir(), "credentials")
	cfg.AWS.AccessKey = "AKIAEXAMPLEKEY1234"
	cfg.AWS.SecretKey = "secret"
	cfg.AWS.Region = "eu-west-1"

	prof, err := prepareProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "my_profile", prof.Name)
	assert.Equal(t, "eu-west-1", prof.Region)

	// a second run without keys picks the region from the file
	cfg.AWS.AccessKey, cfg.AWS.SecretKey, cfg.AWS.Region = "", "", ""
	prof, err = prepareProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
	assert.Contains(t, describeProfile(prof, cfg.AWS.CredentialsFile), "****1234")
	assert.NotContains(t, describeProfile(prof, cfg.AWS.CredentialsFile), "AKIA")
}

func TestPrepareProfileMissing(t *testing.T) {
	cfg := config.Default()
	cfg.AWS.CredentialsFile = filepath.Join(t.TempDir(), "credentials")
	_, err := prepareProfile(cfg)
	require.Error(t, err)
}
