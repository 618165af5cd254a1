// Package source holds the mailbox sources messages are ingested from.
package source

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	_ "github.com/emersion/go-message/charset"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/ports"
)

// IMAPConfig configures an IMAPSource
type IMAPConfig struct {
	Server      string
	Port        int
	Username    string
	Password    string
	Folders     []string
	MaxMessages int
	TLS         bool
	Timeout     time.Duration
}

// IMAPSource fetches the most recent messages of a mailbox over IMAP
type IMAPSource struct {
	cfg    IMAPConfig
	logger *zap.Logger
}

// NewIMAPSource creates an IMAP source
func NewIMAPSource(cfg IMAPConfig, logger *zap.Logger) *IMAPSource {
	if len(cfg.Folders) == 0 {
		cfg.Folders = []string{"INBOX"}
	}
	if cfg.MaxMessages <= 0 {
		cfg.MaxMessages = 50
	}
	if cfg.Port == 0 {
		cfg.Port = 993
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &IMAPSource{cfg: cfg, logger: logger}
}

// Name identifies the source in logs and metrics
func (s *IMAPSource) Name() string {
	return "imap:" + s.cfg.Server
}

func (s *IMAPSource) dial() (*client.Client, error) {
	addr := net.JoinHostPort(s.cfg.Server, fmt.Sprint(s.cfg.Port))
	dialer := &net.Dialer{Timeout: s.cfg.Timeout}
	if s.cfg.TLS {
		return client.DialWithDialerTLS(dialer, addr, nil)
	}
	return client.DialWithDialer(dialer, addr)
}

// Fetch logs in and returns up to MaxMessages of the newest messages per folder
func (s *IMAPSource) Fetch(ctx context.Context) ([]ports.RawMessage, error) {
	c, err := s.dial()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to IMAP server: %w", err)
	}
	defer c.Logout()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			c.Terminate()
		case <-stop:
		}
	}()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, fmt.Errorf("IMAP login failed: %w", err)
	}

	out, err := s.collect(ctx, s.cfg.Folders, func(folder string) ([]ports.RawMessage, error) {
		return s.fetchFolder(c, folder)
	})
	if err != nil {
		return out, err
	}

	s.logger.Debug("Fetched IMAP messages",
		zap.String("server", s.cfg.Server),
		zap.Int("count", len(out)))
	return out, nil
}

// collect gathers every folder's messages. A folder that fails part way
// still contributes the messages read before the failure.
func (s *IMAPSource) collect(ctx context.Context, folders []string, fetch func(string) ([]ports.RawMessage, error)) ([]ports.RawMessage, error) {
	var out []ports.RawMessage
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		msgs, err := fetch(folder)
		out = append(out, msgs...)
		if err != nil {
			s.logger.Warn("Could not fetch folder",
				zap.String("folder", folder),
				zap.Int("partial", len(msgs)),
				zap.Error(err))
		}
	}
	return out, nil
}

func (s *IMAPSource) fetchFolder(c *client.Client, folder string) ([]ports.RawMessage, error) {
	mbox, err := c.Select(folder, true)
	if err != nil {
		return nil, fmt.Errorf("could not access folder: %w", err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.DeletedFlag}
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > s.cfg.MaxMessages {
		uids = uids[len(uids)-s.cfg.MaxMessages:]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{section.FetchItem(), imap.FetchEnvelope, imap.FetchUid}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seqSet, items, messages)
	}()

	var out []ports.RawMessage
	for msg := range messages {
		r := msg.GetBody(section)
		if r == nil {
			continue
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			s.logger.Warn("Failed to read message body", zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		out = append(out, ports.RawMessage{
			ID:  messageID(msg, folder, mbox.UidValidity),
			Raw: raw,
		})
	}
	if err := <-done; err != nil {
		return out, fmt.Errorf("fetch failed: %w", err)
	}
	return out, nil
}

// messageID prefers the Message-ID so copies in several folders are analysed once
func messageID(msg *imap.Message, folder string, uidValidity uint32) string {
	if msg.Envelope != nil {
		if id := strings.Trim(msg.Envelope.MessageId, "<> "); id != "" {
			return id
		}
	}
	return fmt.Sprintf("imap-%s-%d-%d", folder, uidValidity, msg.Uid)
}
