package domain

import "unicode/utf8"

const (
	MaxMessageLen = 512
	PreviewLen    = 100

	SystemSender  = "System"
	DeletedNotice = "message was deleted"
)

type AttachmentKind string

const (
	KindImage AttachmentKind = "image"
	KindVideo AttachmentKind = "video"
	KindAudio AttachmentKind = "audio"
	KindFile  AttachmentKind = "file"
)

func (k AttachmentKind) Valid() bool {
	switch k {
	case KindImage, KindVideo, KindAudio, KindFile:
		return true
	}
	return false
}

type Attachment struct {
	Kind       AttachmentKind `json:"kind"`
	StoredName string         `json:"name"`
	MimeType   string         `json:"type"`
	URL        string         `json:"url"`
}

type Message struct {
	ID           string      `json:"id,omitempty"`
	Sender       string      `json:"sender"`
	SenderUserID UserID      `json:"sender_user_id,omitempty"`
	Avatar       string      `json:"avatar,omitempty"`
	Text         string      `json:"message"`
	Attachment   *Attachment `json:"file,omitempty"`
	Timestamp    float64     `json:"timestamp"`
	Deleted      bool        `json:"deleted"`
}

func SystemMessage(text string, ts float64) Message {
	return Message{Sender: SystemSender, Text: text, Timestamp: ts}
}

func JoinNotice(name string, ts float64) Message {
	return SystemMessage(name+" entered the room", ts)
}

func LeaveNotice(name string, ts float64) Message {
	return SystemMessage(name+" left the room", ts)
}

// DeletedMarker replaces m in place. Id and timestamp survive so the
// (index, timestamp) address stays valid, and the sender id survives so
// delete permissions stay the same after deletion.
func DeletedMarker(m Message) Message {
	return Message{
		ID:           m.ID,
		Sender:       SystemSender,
		SenderUserID: m.SenderUserID,
		Text:         DeletedNotice,
		Timestamp:    m.Timestamp,
		Deleted:      true,
	}
}

func (m Message) Clone() Message {
	if m.Attachment != nil {
		a := *m.Attachment
		m.Attachment = &a
	}
	return m
}

// Preview returns at most n runes of the text, or the attachment kind
// for attachment-only messages.
func (m Message) Preview(n int) string {
	text := m.Text
	if text == "" && m.Attachment != nil {
		text = "[" + string(m.Attachment.Kind) + "]"
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	r := []rune(text)
	return string(r[:n])
}
