package mailfile

import (
	"bufio"
	"bytes"
	"fmt"
	"mime"
	"strings"

	"github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/textproto"
	"github.com/jhillyerd/enmime"

	"todoreader/internal"
	"todoreader/internal/util"
)

// Headers that carry the item's message class rather than data.
var classHeaders = []string{"X-Message-Class", "Content-Class", "Message-Class"}

var wordDecoder = mime.WordDecoder{CharsetReader: charset.Reader}

// ParseMessage turns one RFC 5322 message into a property bag: header fields
// in file order, then "Message Class" and "Body".
func ParseMessage(raw []byte, source internal.ItemSource, folder string) (internal.SourceRecord, error) {
	header, err := textproto.ReadHeader(bufio.NewReader(bytes.NewReader(raw)))
	if err != nil {
		return internal.SourceRecord{}, fmt.Errorf("read header: %w", err)
	}

	bag := internal.NewPropertyBag()
	class := ""
	fields := header.Fields()
	for fields.Next() {
		key := fields.Key()
		value := decodeWords(fields.Value())
		if util.EqualsAnyFold(key, classHeaders...) {
			if class == "" {
				class = strings.TrimSpace(value)
			}
			continue
		}
		if structuralHeader(key) {
			continue
		}
		bag.Set(key, value)
	}
	if class != "" {
		bag.Set("Message Class", class)
	}

	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return internal.SourceRecord{}, fmt.Errorf("read body: %w", err)
	}
	body := strings.TrimSpace(env.Text)
	if body == "" && env.HTML != "" {
		body = util.HTMLToText(env.HTML)
	}
	bag.Set("Body", body)

	return internal.SourceRecord{
		Source:       source,
		Folder:       folder,
		MessageClass: class,
		Properties:   bag,
	}, nil
}

// structuralHeader reports MIME framing headers, which describe the encoding
// of the message and not the item.
func structuralHeader(key string) bool {
	return util.EqualsAnyFold(key, "MIME-Version") || strings.HasPrefix(strings.ToLower(key), "content-")
}

func decodeWords(v string) string {
	dec, err := wordDecoder.DecodeHeader(v)
	if err != nil {
		return v
	}
	return dec
}
