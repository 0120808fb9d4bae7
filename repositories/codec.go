package repositories

import (
	"chat-hub/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the stored message record. They are part of the value
// format written in badger and must never be renumbered.
const (
	fieldID        protowire.Number = 1
	fieldSender    protowire.Number = 2
	fieldRecipient protowire.Number = 3
	fieldContent   protowire.Number = 4
	fieldAt        protowire.Number = 5
	fieldKind      protowire.Number = 6
	fieldTarget    protowire.Number = 7
	fieldLang      protowire.Number = 8
)

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func marshalMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, fieldID, m.ID.String())
	b = appendString(b, fieldSender, m.Sender)
	b = appendString(b, fieldRecipient, m.Recipient)
	b = appendString(b, fieldContent, m.Content)
	b = protowire.AppendTag(b, fieldAt, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Timestamp.UnixNano()))
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Kind))
	b = appendString(b, fieldTarget, m.Target)
	b = appendString(b, fieldLang, m.Lang)
	return b
}

func unmarshalMessage(b []byte) (domain.Message, error) {
	var m domain.Message
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return domain.Message{}, protowire.ParseError(n)
		}
		b = b[n:]
		switch typ {
		case protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			b = b[n:]
			if err := setStringField(&m, num, v); err != nil {
				return domain.Message{}, err
			}
		case protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			b = b[n:]
			switch num {
			case fieldAt:
				m.Timestamp = time.Unix(0, int64(v)).UTC()
			case fieldKind:
				m.Kind = domain.MessageKind(v)
			}
		default:
			// Unknown field from a newer writer, skip it
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return domain.Message{}, protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return m, nil
}

func setStringField(m *domain.Message, num protowire.Number, v string) error {
	switch num {
	case fieldID:
		id, err := uuid.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid message id %q: %w", v, err)
		}
		m.ID = id
	case fieldSender:
		m.Sender = v
	case fieldRecipient:
		m.Recipient = v
	case fieldContent:
		m.Content = v
	case fieldTarget:
		m.Target = v
	case fieldLang:
		m.Lang = v
	}
	return nil
}
