// Package propdump reads message property dumps: one JSON object per message,
// each property keyed by its full MAPI tag.
//
//	{"folder":"Tasks","messageClass":"IPM.Task","properties":[{"tag":"0x0037001F","value":"Buy milk"}]}
package propdump

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"todoreader/internal"
	"todoreader/internal/mapi"
)

type dumpProperty struct {
	Tag   string          `json:"tag"`
	Value json.RawMessage `json:"value"`
}

type dumpMessage struct {
	Folder       string         `json:"folder"`
	MessageClass string         `json:"messageClass"`
	Properties   []dumpProperty `json:"properties"`
}

type Source struct {
	Path   string
	Logger *zap.Logger
}

func (s Source) Read(ctx context.Context) ([]internal.SourceBatch, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(ctx, f, s.Logger)
}

// Decode groups consecutive messages of the same folder into one batch.
// Properties with an unreadable tag or value are dropped and logged.
func Decode(ctx context.Context, r io.Reader, logger *zap.Logger) ([]internal.SourceBatch, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	dec := json.NewDecoder(r)
	var out []internal.SourceBatch
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var dm dumpMessage
		if err := dec.Decode(&dm); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("message %d: %w", n, err)
		}

		msg := mapi.NewMessage(dm.Folder, dm.MessageClass)
		for _, p := range dm.Properties {
			tag, err := mapi.ParseTag(p.Tag)
			if err != nil {
				logger.Warn("dropping property", zap.Int("message", n), zap.String("tag", p.Tag), zap.Error(err))
				continue
			}
			value, err := mapi.DecodeValue(tag, p.Value)
			if err != nil {
				logger.Warn("dropping property", zap.Int("message", n), zap.String("tag", p.Tag), zap.Error(err))
				continue
			}
			msg.Set(tag, value)
		}

		rec := msg.Record(internal.SourcePropDump)
		if len(out) == 0 || out[len(out)-1].Folder != dm.Folder {
			out = append(out, internal.SourceBatch{Source: internal.SourcePropDump, Folder: dm.Folder})
		}
		out[len(out)-1].Records = append(out[len(out)-1].Records, rec)
	}
	return out, nil
}
