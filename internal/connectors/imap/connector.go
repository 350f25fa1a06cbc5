package imap

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"github.com/emersion/go-imap"
	imapclient "github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"todoreader/internal"
	"todoreader/internal/config"
	"todoreader/internal/connectors/mailfile"
)

// Source reads every message of one IMAP mailbox.
type Source struct {
	host     string
	port     int
	secure   bool
	user     string
	password string
	mailbox  string
	logger   *zap.Logger
}

func NewSource(cfg config.Config, mailbox string, logger *zap.Logger) (*Source, error) {
	if err := cfg.Require("IMAP_HOST", cfg.IMAPHost); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_USER", cfg.IMAPUser); err != nil {
		return nil, err
	}
	if err := cfg.Require("IMAP_PASSWORD", cfg.IMAPPassword); err != nil {
		return nil, err
	}
	if mailbox == "" {
		mailbox = cfg.IMAPMailbox
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Source{
		host:     cfg.IMAPHost,
		port:     cfg.IMAPPort,
		secure:   cfg.IMAPSecure,
		user:     cfg.IMAPUser,
		password: cfg.IMAPPassword,
		mailbox:  mailbox,
		logger:   logger,
	}, nil
}

func (s *Source) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	var client *imapclient.Client
	var err error
	if s.secure {
		client, err = imapclient.DialTLS(addr, &tls.Config{ServerName: s.host})
	} else {
		client, err = imapclient.Dial(addr)
	}
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	if err := client.Login(s.user, s.password); err != nil {
		return nil, err
	}

	status, err := client.Select(s.mailbox, true)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", s.mailbox, err)
	}

	batch := internal.SourceBatch{Source: internal.SourceIMAP, Folder: s.mailbox}
	if status.Messages == 0 {
		return []internal.SourceBatch{batch}, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddRange(1, status.Messages)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchUid, section.FetchItem()}
	messages := make(chan *imap.Message, 16)
	fetchDone := make(chan error, 1)
	go func() { fetchDone <- client.Fetch(seqset, items, messages) }()

	var readErr error
	for msg := range messages {
		if msg == nil || ctx.Err() != nil || readErr != nil {
			continue
		}
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			readErr = err
			continue
		}

		rec, err := mailfile.ParseMessage(raw, internal.SourceIMAP, s.mailbox)
		if err != nil {
			s.logger.Warn("skipping unreadable message", zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		batch.Records = append(batch.Records, rec)
	}

	if err := <-fetchDone; err != nil {
		return nil, err
	}
	if readErr != nil {
		return nil, readErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return []internal.SourceBatch{batch}, nil
}
