package smtpfilter

import (
	"bytes"
	"context"
	"io"
	"net/mail"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-scam-classifier/internal/config"
	"github.com/mikey/email-scam-classifier/internal/core"
)

// missingArtifactStore forces the service onto the keyword fallback, which
// gives the tests deterministic verdicts without a trained artifact.
type missingArtifactStore struct{}

func (missingArtifactStore) Load(context.Context) (core.Classifier, error) {
	return nil, core.ErrArtifactNotFound
}

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		FrontendType:     "postfix",
		ListenAddress:    "127.0.0.1:10025",
		StatusHeader:     "X-Scam-Status",
		ConfidenceHeader: "X-Scam-Confidence",
		ModelHeader:      "X-Scam-Model",
		ModifySubject:    true,
		PostfixAddress:   "127.0.0.1",
		PostfixPort:      10026,
		PostfixEnabled:   false,
	}
}

func newTestSession(cfg config.ServerConfig) *smtpSession {
	service := core.NewPredictionService(missingArtifactStore{}, zap.NewNop())
	filter := NewPostfixFilter(service, zap.NewNop(), cfg)
	return &smtpSession{filter: filter, recipients: make([]string, 0)}
}

const scamBody = "URGENT! Please verify your account: click here to claim, winner!\r\n"

const scamMessage = "From: scammer@evil.example\r\n" +
	"To: victim@example.com\r\n" +
	"Subject: Your prize\r\n" +
	"\r\n" +
	scamBody

const hamMessage = "From: alice@example.com\r\n" +
	"To: bob@example.com\r\n" +
	"Subject: Lunch tomorrow\r\n" +
	"\r\n" +
	"Shall we meet at noon? The usual place works for me.\r\n"

func parseMessage(t *testing.T, raw []byte) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestTagMessageInjectsHeaders(t *testing.T) {
	s := newTestSession(testConfig())
	raw := []byte(hamMessage)
	result := &core.PredictionResult{
		Label:      core.LabelNotSpam,
		Confidence: 0.9731,
		ModelUsed:  "multinomial_nb",
	}

	tagged := parseMessage(t, s.tagMessage(parseMessage(t, raw), raw, result, false))

	assert.Equal(t, "Not Spam", tagged.Header.Get("X-Scam-Status"))
	assert.Equal(t, "0.9731", tagged.Header.Get("X-Scam-Confidence"))
	assert.Equal(t, "multinomial_nb", tagged.Header.Get("X-Scam-Model"))
	assert.Equal(t, "Lunch tomorrow", tagged.Header.Get("Subject"))
	assert.Equal(t, "alice@example.com", tagged.Header.Get("From"))

	body, err := io.ReadAll(tagged.Body)
	require.NoError(t, err)
	assert.Equal(t, "Shall we meet at noon? The usual place works for me.\r\n", string(body))
}

func TestTagMessageRewritesSubjectForScam(t *testing.T) {
	s := newTestSession(testConfig())
	raw := []byte(scamMessage)
	result := &core.PredictionResult{
		Label:      core.LabelSpam,
		Confidence: 0.85,
		ModelUsed:  "keyword_fallback",
	}

	tagged := parseMessage(t, s.tagMessage(parseMessage(t, raw), raw, result, true))

	assert.Equal(t, "[**SCAM**] Your prize", tagged.Header.Get("Subject"))
	assert.Equal(t, "Spam", tagged.Header.Get("X-Scam-Status"))
	assert.Equal(t, "0.8500", tagged.Header.Get("X-Scam-Confidence"))

	// A second pass must not stack prefixes.
	once := s.tagMessage(parseMessage(t, raw), raw, result, true)
	retagged := parseMessage(t, s.tagMessage(parseMessage(t, once), once, result, true))
	assert.Equal(t, "[**SCAM**] Your prize", retagged.Header.Get("Subject"))
}

func TestTagMessageDecodesEncodedSubject(t *testing.T) {
	s := newTestSession(testConfig())
	raw := []byte("From: a@b.example\r\n" +
		"Subject: =?UTF-8?Q?Gro=C3=9Fer_Gewinn?=\r\n" +
		"\r\n" +
		"body\r\n")
	result := &core.PredictionResult{Label: core.LabelSpam, Confidence: 0.85, ModelUsed: "keyword_fallback"}

	tagged := parseMessage(t, s.tagMessage(parseMessage(t, raw), raw, result, true))

	assert.Equal(t, "[**SCAM**] Großer Gewinn", tagged.Header.Get("Subject"))
}

func TestTagMessageKeepsSubjectWhenRewriteDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.ModifySubject = false
	s := newTestSession(cfg)
	raw := []byte(scamMessage)
	result := &core.PredictionResult{Label: core.LabelSpam, Confidence: 0.85, ModelUsed: "keyword_fallback"}

	tagged := parseMessage(t, s.tagMessage(parseMessage(t, raw), raw, result, true))

	assert.Equal(t, "Your prize", tagged.Header.Get("Subject"))
	assert.Equal(t, "Spam", tagged.Header.Get("X-Scam-Status"))
}

func TestDataRejectsScamWhenBlocking(t *testing.T) {
	cfg := testConfig()
	cfg.BlockSpam = true
	s := newTestSession(cfg)

	require.NoError(t, s.Mail("scammer@evil.example", nil))
	require.NoError(t, s.Rcpt("victim@example.com", nil))

	err := s.Data(strings.NewReader(scamMessage))
	require.Error(t, err)

	var smtpErr *smtp.SMTPError
	require.ErrorAs(t, err, &smtpErr)
	assert.Equal(t, 550, smtpErr.Code)
	assert.Contains(t, smtpErr.Message, "Rejected as scam")
	assert.Contains(t, smtpErr.Message, "0.85")
}

func TestDataAcceptsHam(t *testing.T) {
	cfg := testConfig()
	cfg.BlockSpam = true
	s := newTestSession(cfg)

	require.NoError(t, s.Mail("alice@example.com", nil))
	require.NoError(t, s.Rcpt("bob@example.com", nil))

	assert.NoError(t, s.Data(strings.NewReader(hamMessage)))
}

func TestDataTagsScamWhenNotBlocking(t *testing.T) {
	s := newTestSession(testConfig())

	require.NoError(t, s.Mail("scammer@evil.example", nil))
	require.NoError(t, s.Rcpt("victim@example.com", nil))

	// With blocking off the scam is tagged and accepted.
	assert.NoError(t, s.Data(strings.NewReader(scamMessage)))
}

func TestDataRejectsUnparsableMessage(t *testing.T) {
	s := newTestSession(testConfig())

	assert.Error(t, s.Data(strings.NewReader("not an email at all")))
}

func TestSessionReset(t *testing.T) {
	s := newTestSession(testConfig())
	require.NoError(t, s.Mail("a@b.example", nil))
	require.NoError(t, s.Rcpt("c@d.example", nil))

	s.Reset()

	assert.Empty(t, s.sender)
	assert.Empty(t, s.recipients)
}
