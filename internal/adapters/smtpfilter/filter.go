package smtpfilter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/email-scam-classifier/internal/config"
	"github.com/mikey/email-scam-classifier/internal/core"
	"go.uber.org/zap"
)

// PostfixFilter is a postfix content-filter frontend. Messages arrive over
// SMTP, the text body is classified, scam headers are injected and the
// message is re-injected into postfix.
type PostfixFilter struct {
	service *core.PredictionService
	logger  *zap.Logger
	cfg     config.ServerConfig
	server  *smtp.Server
}

// NewPostfixFilter creates a new postfix content filter
func NewPostfixFilter(service *core.PredictionService, logger *zap.Logger, cfg config.ServerConfig) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[**SCAM**] "
	}
	return &PostfixFilter{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// Start starts the SMTP listener
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})
	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
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

// sendToPostfix re-injects the tagged message into postfix
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := fmt.Sprintf("%s:%d", f.cfg.PostfixAddress, f.cfg.PostfixPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to postfix: %w", err)
	}
	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(emailData); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for the filter)
func (s *smtpSession) AuthPlain(_, _ string) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data classifies the message, tags it and hands it back to postfix
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.filter.service.Predict(ctx, textContent)
	if err != nil {
		s.filter.logger.Error("Failed to classify email",
			zap.Error(err),
			zap.String("sender", s.sender))
		// Deliver unclassified rather than lose mail on a fault.
		result = &core.PredictionResult{
			Label:      core.LabelNotSpam,
			Confidence: 0,
			ModelUsed:  "error",
		}
	}

	isScam := result.Label == core.LabelSpam
	if isScam && s.filter.cfg.BlockSpam {
		s.filter.logger.Info("Rejecting scam email",
			zap.String("from", s.sender),
			zap.Float64("confidence", result.Confidence),
			zap.String("model", result.ModelUsed))
		return &smtp.SMTPError{
			Code:    550,
			Message: fmt.Sprintf("Rejected as scam (confidence: %.2f)", result.Confidence),
		}
	}

	tagged := s.tagMessage(msg, rawData, result, isScam)

	if s.filter.cfg.PostfixEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, tagged); err != nil {
			s.filter.logger.Error("Failed to send email back to postfix",
				zap.Error(err),
				zap.String("sender", s.sender))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", s.sender),
		zap.String("prediction", string(result.Label)),
		zap.Float64("confidence", result.Confidence),
		zap.String("model", result.ModelUsed))

	return nil
}

// tagMessage rebuilds the message with the scam headers prepended and,
// when configured, the subject prefixed. The original body bytes are kept
// untouched so MIME parts and attachments survive.
func (s *smtpSession) tagMessage(msg *mail.Message, rawData []byte, result *core.PredictionResult, isScam bool) []byte {
	var tagged bytes.Buffer

	fmt.Fprintf(&tagged, "%s: %s\r\n", s.filter.cfg.StatusHeader, result.Label)
	fmt.Fprintf(&tagged, "%s: %.4f\r\n", s.filter.cfg.ConfidenceHeader, result.Confidence)
	fmt.Fprintf(&tagged, "%s: %s\r\n", s.filter.cfg.ModelHeader, result.ModelUsed)

	rewriteSubject := isScam && s.filter.cfg.ModifySubject && s.filter.cfg.SubjectPrefix != ""
	for key, values := range msg.Header {
		if rewriteSubject && strings.EqualFold(key, "Subject") {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&tagged, "%s: %s\r\n", key, value)
		}
	}
	if rewriteSubject {
		subject := decodeEncodedHeader(msg.Header.Get("Subject"))
		if !strings.HasPrefix(subject, s.filter.cfg.SubjectPrefix) {
			subject = s.filter.cfg.SubjectPrefix + subject
		}
		fmt.Fprintf(&tagged, "Subject: %s\r\n", subject)
	}
	fmt.Fprintf(&tagged, "\r\n")

	// Find where the original body starts in the raw data.
	if idx := bytes.Index(rawData, []byte("\r\n\r\n")); idx != -1 {
		tagged.Write(rawData[idx+4:])
	} else if idx := bytes.Index(rawData, []byte("\n\n")); idx != -1 {
		tagged.Write(rawData[idx+2:])
	} else if body, err := io.ReadAll(msg.Body); err == nil {
		tagged.Write(body)
	}

	return tagged.Bytes()
}

// Logout handles SMTP logout (not needed for the filter)
func (s *smtpSession) Logout() error {
	return nil
}
