package errors

import "github.com/pkg/errors"

var (
	ErrMailboxNotConfigured = errors.New("mailbox is not configured")
)
