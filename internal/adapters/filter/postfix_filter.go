package filter

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
	"github.com/rasi23/pingpeek-phishguard/internal/whitelist"
)

// Analyzer is the analysis entry point the filters call
type Analyzer interface {
	Analyze(ctx context.Context, raw string) (*core.Report, error)
}

// PostfixOptions configure a PostfixFilter
type PostfixOptions struct {
	ListenAddr     string
	BlockPhishing  bool
	Headers        HeaderNames
	PostfixAddr    string
	PostfixPort    int
	PostfixEnabled bool
	SubjectPrefix  string
	ModifySubject  bool
	// AnalysisTimeout bounds one message analysis
	AnalysisTimeout time.Duration
}

// PostfixFilter implements a Postfix content filter: mail arrives over SMTP,
// gets analysed and annotated, and is re-injected into Postfix
type PostfixFilter struct {
	analyzer Analyzer
	logger   *zap.Logger
	opts     PostfixOptions
	server   *smtp.Server
	// deliver re-injects a message, sendToPostfix unless replaced in tests
	deliver func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(analyzer Analyzer, logger *zap.Logger, opts PostfixOptions) *PostfixFilter {
	if opts.SubjectPrefix == "" && opts.ModifySubject {
		opts.SubjectPrefix = "[PHISHING] "
	}
	if opts.Headers.Verdict == "" {
		opts.Headers.Verdict = DefaultHeaderNames.Verdict
	}
	if opts.Headers.Confidence == "" {
		opts.Headers.Confidence = DefaultHeaderNames.Confidence
	}
	if opts.Headers.Rules == "" {
		opts.Headers.Rules = DefaultHeaderNames.Rules
	}
	if opts.AnalysisTimeout <= 0 {
		opts.AnalysisTimeout = 10 * time.Second
	}

	f := &PostfixFilter{
		analyzer: analyzer,
		logger:   logger,
		opts:     opts,
	}
	f.deliver = f.sendToPostfix
	return f
}

// Start starts the SMTP listener
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.opts.ListenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.opts.ListenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyses a raw message without any SMTP transport
func (f *PostfixFilter) ProcessEmail(ctx context.Context, raw []byte) (*core.Report, error) {
	return f.analyzer.Analyze(ctx, string(raw))
}

// filterResult is what handleMessage decided
type filterResult struct {
	report   *core.Report
	rejected bool
	message  []byte
}

// handleMessage analyses one message and builds the annotated copy. Analysis
// errors never bounce mail, the message passes with an error header.
func (f *PostfixFilter) handleMessage(ctx context.Context, sender string, raw []byte) filterResult {
	ctx, cancel := context.WithTimeout(ctx, f.opts.AnalysisTimeout)
	defer cancel()

	report, err := f.analyzer.Analyze(ctx, string(raw))
	if err != nil {
		f.logger.Error("Failed to analyze email",
			zap.Error(err),
			zap.String("sender", sender),
			zap.String("sender_domain", whitelist.ExtractDomain(sender)))
		return filterResult{message: annotate(raw, nil, f.opts.Headers, err, "")}
	}

	phishing := report.Result.Verdict == core.VerdictPhishing
	if phishing && f.opts.BlockPhishing {
		return filterResult{report: report, rejected: true}
	}

	prefix := ""
	if phishing && f.opts.ModifySubject {
		prefix = f.opts.SubjectPrefix
	}
	return filterResult{report: report, message: annotate(raw, report, f.opts.Headers, nil, prefix)}
}

// sendToPostfix re-injects a message into the Postfix return port. A
// recipient refused by Postfix is logged and skipped, the message fails only
// when none is accepted.
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, data []byte) error {
	addr := net.JoinHostPort(f.opts.PostfixAddr, strconv.Itoa(f.opts.PostfixPort))
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("dial postfix %s: %w", addr, err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("set postfix deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	helo, err := os.Hostname()
	if err != nil {
		helo = "localhost"
	}
	if err := c.Hello(helo); err != nil {
		return fmt.Errorf("postfix EHLO: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("postfix MAIL FROM: %w", err)
	}

	accepted := 0
	for _, rcpt := range recipients {
		if err := c.Rcpt(rcpt, nil); err != nil {
			f.logger.Warn("Postfix refused recipient", zap.String("recipient", rcpt), zap.Error(err))
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return errors.New("postfix refused every recipient")
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("postfix DATA: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write message to postfix: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish postfix DATA: %w", err)
	}

	// Past DATA the message is queued, a failed QUIT changes nothing
	if err := c.Quit(); err != nil {
		f.logger.Debug("Postfix QUIT failed", zap.Error(err))
	}
	return nil
}
