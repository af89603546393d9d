package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/config"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

// CloudAPISender talks to the WhatsApp Business Cloud API.
type CloudAPISender struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	client        *http.Client
}

// NewCloudAPISender builds a sender from the WhatsApp settings.
func NewCloudAPISender(cfg config.WhatsAppConfig) *CloudAPISender {
	return &CloudAPISender{
		accessToken:   cfg.AccessToken,
		phoneNumberID: cfg.PhoneNumberID,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/") + "/" + cfg.APIVersion,
		client:        &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *CloudAPISender) Name() string { return config.ProviderCloud }

type cloudText struct {
	Body       string `json:"body"`
	PreviewURL bool   `json:"preview_url"`
}

type cloudImage struct {
	Link string `json:"link"`
}

type cloudReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type cloudButton struct {
	Type  string     `json:"type"`
	Reply cloudReply `json:"reply"`
}

type cloudInteractive struct {
	Type string `json:"type"`
	Body struct {
		Text string `json:"text"`
	} `json:"body"`
	Action struct {
		Buttons []cloudButton `json:"buttons"`
	} `json:"action"`
}

type cloudMessage struct {
	MessagingProduct string            `json:"messaging_product"`
	RecipientType    string            `json:"recipient_type"`
	To               string            `json:"to"`
	Type             string            `json:"type"`
	Text             *cloudText        `json:"text,omitempty"`
	Image            *cloudImage       `json:"image,omitempty"`
	Interactive      *cloudInteractive `json:"interactive,omitempty"`
}

type cloudResponse struct {
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// buildCloudMessage maps an outbound message to the API payload.
func buildCloudMessage(to string, msg models.OutboundMessage) cloudMessage {
	out := cloudMessage{MessagingProduct: "whatsapp", RecipientType: "individual", To: to}
	switch msg.Kind {
	case models.OutImage:
		out.Type = "image"
		out.Image = &cloudImage{Link: msg.ImageURL}
	case models.OutChoice:
		out.Type = "interactive"
		in := &cloudInteractive{Type: "button"}
		in.Body.Text = msg.Text
		for _, opt := range msg.Options {
			in.Action.Buttons = append(in.Action.Buttons, cloudButton{Type: "reply", Reply: cloudReply{ID: opt.ID, Title: opt.Title}})
		}
		out.Interactive = in
	default:
		out.Type = "text"
		out.Text = &cloudText{Body: msg.Text}
	}
	return out
}

func (s *CloudAPISender) Send(ctx context.Context, to string, msg models.OutboundMessage) error {
	body, err := json.Marshal(buildCloudMessage(to, msg))
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", s.baseURL, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.accessToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("cloud api request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("cloud api returned %d: %s", resp.StatusCode, string(respBody))
	}
	var result cloudResponse
	if err := json.Unmarshal(respBody, &result); err == nil && result.Error != nil {
		return fmt.Errorf("cloud api error %d: %s", result.Error.Code, result.Error.Message)
	}
	return nil
}
