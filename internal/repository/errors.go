package repository

import "errors"

var (
	ErrAttachmentRecordNotFound = errors.New("attachment record not found")
)
