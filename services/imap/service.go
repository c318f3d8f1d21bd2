package imap

import (
	"context"
	"time"

	"github.com/emersion/go-imap"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/customeros/mailvault/config"
	"github.com/customeros/mailvault/interfaces"
	mverrors "github.com/customeros/mailvault/internal/errors"
	"github.com/customeros/mailvault/internal/logger"
	"github.com/customeros/mailvault/internal/models"
	"github.com/customeros/mailvault/internal/tracing"
)

// IMAPSource fetches one batch of unread messages per call. Fetching marks
// the messages seen on the server, so a message is only handed out once.
type IMAPSource struct {
	config *config.IMAPConfig
	log    logger.Logger
}

func NewIMAPSource(cfg *config.IMAPConfig, log logger.Logger) interfaces.MessageSource {
	return &IMAPSource{
		config: cfg,
		log:    log,
	}
}

func (s *IMAPSource) FetchMessages(ctx context.Context, limit int) ([]models.Message, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "IMAPSource.FetchMessages")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("limit", limit)

	if s.config.Server == "" || s.config.Email == "" {
		return nil, mverrors.ErrMailboxNotConfigured
	}

	c, err := s.connect(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	defer s.disconnect(c)

	// Writable select so the fetch marks messages seen
	_, err = c.Select(s.config.Mailbox, false)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(err, "failed to select %s", s.config.Mailbox)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	if s.config.TargetSender != "" {
		criteria.Header.Add("From", s.config.TargetSender)
	} else {
		criteria.Since = time.Now().Add(-time.Duration(s.config.LookbackHours) * time.Hour)
	}

	ids, err := c.Search(criteria)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "search failed")
	}
	span.LogKV("result.found", len(ids))

	if len(ids) == 0 {
		return []models.Message{}, nil
	}

	// Oldest first, capped to the batch size
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(ids...)

	items := []imap.FetchItem{
		imap.FetchEnvelope,
		imap.FetchFlags,
		imap.FetchUid,
		imap.FetchRFC822,
	}

	messagesCh := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, items, messagesCh)
	}()

	messages := make([]models.Message, 0, len(ids))
	for msg := range messagesCh {
		messages = append(messages, s.parseMessage(msg))
	}

	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "fetch failed")
	}

	s.log.Infof("Fetched %d messages from %s", len(messages), s.config.Mailbox)
	span.LogKV("result.fetched", len(messages))

	return messages, nil
}
