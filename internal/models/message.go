package models

import "time"

// MessageKind classifies inbound messages.
type MessageKind string

const (
	KindText   MessageKind = "text"
	KindButton MessageKind = "button_choice"
	KindImage  MessageKind = "image"
	KindOther  MessageKind = "other"
)

// Synthetic tokens produced for image messages.
const (
	TokenPaymentProof  = "COMPROBANTE_RECIBIDO"
	TokenImageReceived = "_Imagen Recibida_"
)

// Inbound is a normalized message received from any WhatsApp provider.
type Inbound struct {
	UserID      string      `json:"user_id"`
	DisplayName string      `json:"display_name"`
	Kind        MessageKind `json:"kind"`
	Payload     string      `json:"payload"`
}

// OutboundKind selects how an outbound message is rendered.
type OutboundKind string

const (
	OutText   OutboundKind = "text"
	OutImage  OutboundKind = "image"
	OutChoice OutboundKind = "choice"
)

// MaxChoiceOptions is the most buttons WhatsApp renders on one message.
const MaxChoiceOptions = 3

// ChoiceOption is a reply button. ID comes back as the inbound payload.
type ChoiceOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// OutboundMessage is one message to send. To is empty when the reply goes
// back to the user who wrote. Pause is a pacing hint applied before sending.
type OutboundMessage struct {
	To       string         `json:"to,omitempty"`
	Kind     OutboundKind   `json:"kind"`
	Text     string         `json:"text,omitempty"`
	ImageURL string         `json:"image_url,omitempty"`
	Options  []ChoiceOption `json:"options,omitempty"`
	Pause    time.Duration  `json:"pause,omitempty"`
}

// Text builds a text message.
func Text(body string) OutboundMessage {
	return OutboundMessage{Kind: OutText, Text: body}
}

// Image builds an image message.
func Image(url string) OutboundMessage {
	return OutboundMessage{Kind: OutImage, ImageURL: url}
}

// Choice builds a button message. Options beyond MaxChoiceOptions are dropped.
func Choice(body string, options ...ChoiceOption) OutboundMessage {
	if len(options) > MaxChoiceOptions {
		options = options[:MaxChoiceOptions]
	}
	return OutboundMessage{Kind: OutChoice, Text: body, Options: options}
}

// After returns a copy of m with the given pause hint.
func (m OutboundMessage) After(d time.Duration) OutboundMessage {
	m.Pause = d
	return m
}
