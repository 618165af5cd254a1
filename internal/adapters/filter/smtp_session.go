package filter

import (
	"context"
	"fmt"
	"io"

	"github.com/emersion/go-smtp"
	"go.uber.org/zap"
)

type smtpBackend struct {
	filter *PostfixFilter
}

func (b *smtpBackend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession collects one envelope and hands DATA to the filter
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender, s.recipients = "", nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data answers 550 for blocked phishing, otherwise re-injects the annotated
// copy when forwarding is on
func (s *smtpSession) Data(r io.Reader) error {
	log := s.filter.logger.With(zap.String("sender", s.sender))

	raw, err := io.ReadAll(r)
	if err != nil {
		log.Error("Failed to read message data", zap.Error(err))
		return err
	}

	res := s.filter.handleMessage(context.Background(), s.sender, raw)
	if res.rejected {
		confidence := res.report.Result.Confidence
		log.Info("Rejecting phishing email",
			zap.Float64("confidence", confidence),
			zap.Strings("rules", res.report.Result.RuleIDs()))
		return &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as phishing (confidence: %.0f)", confidence),
		}
	}

	if !s.filter.opts.PostfixEnabled {
		log.Warn("Postfix forwarding disabled, message dropped after analysis")
	} else if err := s.filter.deliver(s.sender, s.recipients, res.message); err != nil {
		log.Error("Failed to re-inject message", zap.Error(err))
		return err
	}

	if res.report != nil {
		log.Info("Processed email",
			zap.String("verdict", string(res.report.Result.Verdict)),
			zap.Float64("confidence", res.report.Result.Confidence))
	}
	return nil
}

func (s *smtpSession) Logout() error {
	return nil
}
