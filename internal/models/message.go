package models

import (
	"time"
)

// Message is an email fetched from a mailbox, reduced to what the
// attachment pipeline needs.
type Message struct {
	ID          string
	Sender      string
	Subject     string
	ReceivedAt  time.Time
	Attachments []Attachment
}

// Attachment is a single file carried by a message. Size is the declared
// size in bytes, which is what the acceptance policy evaluates.
type Attachment struct {
	Filename    string
	ContentType string
	Size        int64
	Content     []byte
	Checksum    string
}

func (m *Message) HasAttachments() bool {
	return len(m.Attachments) > 0
}
