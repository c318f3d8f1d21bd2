package imap

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/customeros/mailsherpa/mailvalidate"
	go_imap "github.com/emersion/go-imap"
	"github.com/jhillyerd/enmime"

	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/utils"
)

// parseMessage converts a raw IMAP message into the pipeline's message model
func (s *IMAPSource) parseMessage(msg *go_imap.Message) models.Message {
	message := models.Message{
		ID:         fmt.Sprintf("imap-%d", msg.Uid),
		ReceivedAt: utils.Now(),
	}

	if msg.Envelope != nil {
		if id := utils.NormalizeMessageID(msg.Envelope.MessageId); id != "" {
			message.ID = id
		}
		message.Subject = msg.Envelope.Subject
		if !msg.Envelope.Date.IsZero() {
			message.ReceivedAt = msg.Envelope.Date
		}
		if len(msg.Envelope.From) > 0 {
			sender := msg.Envelope.From[0]
			message.Sender = sender.Address()
			syntaxValidation := mailvalidate.ValidateEmailSyntax(sender.Address())
			if syntaxValidation.IsValid {
				message.Sender = syntaxValidation.CleanEmail
			}
		}
	}

	fullMessageData := s.extractFullMessage(msg)
	if len(fullMessageData) > 0 {
		message.Attachments = s.parseAttachments(fullMessageData)
	}

	return message
}

// extractFullMessage pulls the entire RFC822 body out of the fetch response
func (s *IMAPSource) extractFullMessage(msg *go_imap.Message) []byte {
	var fullMessageBuffer bytes.Buffer

	for section, literal := range msg.Body {
		if section.Peek {
			continue // Skip PEEK sections to avoid duplicates
		}

		// Check if this is the full message section
		if len(section.Path) == 0 && section.Specifier == go_imap.EntireSpecifier {
			data, err := io.ReadAll(literal)
			if err == nil {
				fullMessageBuffer.Write(data)
				break
			}
		}
	}

	return fullMessageBuffer.Bytes()
}

// parseAttachments extracts attachment parts with enmime. Inline parts are
// included when they carry a file name, otherwise there is nothing to store.
func (s *IMAPSource) parseAttachments(messageData []byte) []models.Attachment {
	envelope, err := enmime.ReadEnvelope(bytes.NewReader(messageData))
	if err != nil {
		s.log.Warnf("Error parsing message content: %v", err)
		return nil
	}

	attachments := make([]models.Attachment, 0, len(envelope.Attachments))

	for _, part := range envelope.Attachments {
		attachments = append(attachments, s.toAttachment(part))
	}

	for _, part := range envelope.Inlines {
		if part.FileName == "" {
			continue
		}
		attachments = append(attachments, s.toAttachment(part))
	}

	return attachments
}

func (s *IMAPSource) toAttachment(part *enmime.Part) models.Attachment {
	contentType := part.ContentType
	if contentType == "" {
		contentType = utils.ContentTypeForFilename(part.FileName)
	}

	hash := sha256.Sum256(part.Content)

	return models.Attachment{
		Filename:    part.FileName,
		ContentType: contentType,
		Size:        int64(len(part.Content)),
		Content:     part.Content,
		Checksum:    hex.EncodeToString(hash[:]),
	}
}
