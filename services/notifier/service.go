package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strings"
	"time"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailvault/config"
	"github.com/customeros/mailvault/interfaces"
	"github.com/customeros/mailvault/internal/enum"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
	"github.com/customeros/mailvault/internal/utils"
)

// SMTPNotifier mails the per-run report to a single configured recipient.
type SMTPNotifier struct {
	config    *config.SMTPConfig
	recipient string
	log       logger.Logger
}

func NewSMTPNotifier(cfg *config.SMTPConfig, recipient string, log logger.Logger) interfaces.NotificationService {
	return &SMTPNotifier{
		config:    cfg,
		recipient: recipient,
		log:       log,
	}
}

func (s *SMTPNotifier) SendRunReport(ctx context.Context, summary models.RunSummary) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPNotifier.SendRunReport")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	if s.recipient == "" || s.config.Host == "" {
		return nil
	}

	validation := mailvalidate.ValidateEmailSyntax(s.recipient)
	if !validation.IsValid {
		err := errors.Errorf("notification recipient is not a valid address: %s", s.recipient)
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Infof("Sending notification to %s", s.recipient)

	subject := reportSubject(summary)
	buffer, err := s.buildMessage(subject, reportText(summary), reportHTML(summary))
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	err = s.sendToServer(ctx, s.config.FromAddress, []string{s.recipient}, buffer)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	s.log.Info("Notification sent successfully")
	return nil
}

func reportSubject(summary models.RunSummary) string {
	status := summary.Status().String()
	return fmt.Sprintf("Attachment Processor Report - %s", strings.ToUpper(status[:1])+status[1:])
}

func reportText(summary models.RunSummary) string {
	var b strings.Builder
	b.WriteString("Attachment Processor Report\n\n")
	fmt.Fprintf(&b, "Status: %s\n", summary.Status())
	fmt.Fprintf(&b, "Total Emails Processed: %d\n", summary.TotalEmails)
	fmt.Fprintf(&b, "Emails with Attachments: %d\n", summary.EmailsWithAttachments)
	fmt.Fprintf(&b, "Total Attachments Found: %d\n", summary.TotalAttachments)
	fmt.Fprintf(&b, "Eligible Attachments: %d\n", summary.EligibleAttachments)
	fmt.Fprintf(&b, "Successfully Processed: %d\n", summary.ProcessedAttachments)
	fmt.Fprintf(&b, "Failed to Process: %d\n", summary.FailedCount())
	fmt.Fprintf(&b, "Timestamp: %s\n", utils.Now().Format("2006-01-02 15:04:05"))

	if summary.MissingAttachments() {
		b.WriteString("\nWarning: No attachments found in any emails.\n")
	}
	if len(summary.Failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, failure := range summary.Failures {
			fmt.Fprintf(&b, "  - %s\n", failure)
		}
	}
	return b.String()
}

func reportHTML(summary models.RunSummary) string {
	var b strings.Builder
	b.WriteString("<h2>Attachment Processor Report</h2>\n")
	fmt.Fprintf(&b, "<p><strong>Status:</strong> %s</p>\n", summary.Status())
	b.WriteString("<h3>Processing Summary:</h3>\n<ul>\n")
	fmt.Fprintf(&b, "<li>Total Emails Processed: %d</li>\n", summary.TotalEmails)
	fmt.Fprintf(&b, "<li>Emails with Attachments: %d</li>\n", summary.EmailsWithAttachments)
	fmt.Fprintf(&b, "<li>Total Attachments Found: %d</li>\n", summary.TotalAttachments)
	fmt.Fprintf(&b, "<li>Eligible Attachments: %d</li>\n", summary.EligibleAttachments)
	fmt.Fprintf(&b, "<li>Successfully Processed: %d</li>\n", summary.ProcessedAttachments)
	fmt.Fprintf(&b, "<li>Failed to Process: %d</li>\n", summary.FailedCount())
	b.WriteString("</ul>\n")
	fmt.Fprintf(&b, "<p>Timestamp: %s</p>\n", utils.Now().Format("2006-01-02 15:04:05"))

	if summary.MissingAttachments() {
		b.WriteString(`<p style="color: red;"><strong>Warning:</strong> No attachments found in any emails.</p>` + "\n")
	}
	if len(summary.Failures) > 0 {
		b.WriteString("<h3>Failures:</h3>\n<ul>\n")
		for _, failure := range summary.Failures {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(failure))
		}
		b.WriteString("</ul>\n")
	}
	return b.String()
}

// buildMessage assembles a multipart/alternative MIME message with a text
// and an HTML rendering of the report.
func (s *SMTPNotifier) buildMessage(subject, textBody, htmlBody string) (*bytes.Buffer, error) {
	buffer := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(buffer)

	headers := map[string]string{
		"From":         s.config.FromAddress,
		"To":           s.recipient,
		"Subject":      subject,
		"Date":         utils.Now().Format(time.RFC1123Z),
		"Message-ID":   utils.GenerateMessageID(utils.ExtractDomainFromEmail(s.config.FromAddress), ""),
		"MIME-Version": "1.0",
		"Content-Type": "multipart/alternative; boundary=" + writer.Boundary(),
	}
	writeHeaders(headers, buffer)

	if err := addPart(writer, "text/plain; charset=UTF-8", textBody); err != nil {
		return nil, err
	}
	if err := addPart(writer, "text/html; charset=UTF-8", htmlBody); err != nil {
		return nil, err
	}

	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "failed to finalize message")
	}
	return buffer, nil
}

func writeHeaders(headers map[string]string, buffer *bytes.Buffer) {
	for k, v := range headers {
		buffer.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	buffer.WriteString("\r\n")
}

func addPart(writer *multipart.Writer, contentType, content string) error {
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {contentType},
		"Content-Transfer-Encoding": {"7bit"},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to create %s part", contentType)
	}
	_, err = part.Write([]byte(content))
	if err != nil {
		return errors.Wrapf(err, "failed to write %s part", contentType)
	}
	return nil
}

// sendToServer picks the transport based on the configured security mode.
func (s *SMTPNotifier) sendToServer(ctx context.Context, from string, recipients []string, buffer *bytes.Buffer) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "SMTPNotifier.sendToServer")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.Username != "" {
		auth = smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	}

	switch enum.GetEmailSecurity(s.config.Security) {
	case enum.EmailSecurityStartTLS:
		return s.sendWithSTARTTLS(ctx, addr, auth, from, recipients, buffer)
	case enum.EmailSecuritySSL, enum.EmailSecurityTLS:
		return s.sendWithExplicitTLS(ctx, addr, auth, from, recipients, buffer)
	}

	err := smtp.SendMail(addr, auth, from, recipients, buffer.Bytes())
	if err != nil {
		err = fmt.Errorf("failed to send email: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (s *SMTPNotifier) sendWithSTARTTLS(ctx context.Context, addr string, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SMTPNotifier.sendWithSTARTTLS")
	defer span.Finish()
	span.LogKV("smtp_server", s.config.Host)
	span.LogKV("smtp_port", s.config.Port)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	tlsConfig := &tls.Config{
		ServerName: s.config.Host,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		err = fmt.Errorf("failed to start TLS: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			err = fmt.Errorf("SMTP authentication failed: %w", err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	return transmit(span, client, from, recipients, buffer)
}

func (s *SMTPNotifier) sendWithExplicitTLS(ctx context.Context, addr string, auth smtp.Auth, from string, recipients []string, buffer *bytes.Buffer) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "SMTPNotifier.sendWithExplicitTLS")
	defer span.Finish()
	span.LogKV("address", addr)

	tlsConfig := &tls.Config{
		ServerName: s.config.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		err = fmt.Errorf("failed to connect to SMTP server: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		err = fmt.Errorf("failed to create SMTP client: %w", err)
		tracing.TraceErr(span, err)
		return err
	}
	defer client.Close()

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			err = fmt.Errorf("SMTP authentication failed: %w", err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	return transmit(span, client, from, recipients, buffer)
}

func transmit(span opentracing.Span, client *smtp.Client, from string, recipients []string, buffer *bytes.Buffer) error {
	if err := client.Mail(from); err != nil {
		err = fmt.Errorf("SMTP MAIL command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	for _, recipient := range recipients {
		if err := client.Rcpt(recipient); err != nil {
			err = fmt.Errorf("SMTP RCPT command failed for %s: %w", recipient, err)
			tracing.TraceErr(span, err)
			return err
		}
	}

	dataWriter, err := client.Data()
	if err != nil {
		err = fmt.Errorf("SMTP DATA command failed: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if _, err = dataWriter.Write(buffer.Bytes()); err != nil {
		err = fmt.Errorf("failed to write email data: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	if err = dataWriter.Close(); err != nil {
		err = fmt.Errorf("failed to close data writer: %w", err)
		tracing.TraceErr(span, err)
		return err
	}

	return client.Quit()
}
