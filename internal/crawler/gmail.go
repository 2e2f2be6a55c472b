package crawler

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"bankmail/internal/domain"
	"bankmail/internal/httpretry"
)

// gmailAPI implements MailAPI against the Gmail REST API for the mailbox of
// the token owner ("me").
type gmailAPI struct {
	svc *gmail.Service
}

// newGmailAPI builds a Gmail client authenticated with a caller-supplied
// bearer token. Transient HTTP failures are retried by the transport; the
// crawler itself never retries.
func newGmailAPI(ctx context.Context, accessToken string) (*gmailAPI, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}),
			Base:   httpretry.New(),
		},
		Timeout: 30 * time.Second,
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &gmailAPI{svc: svc}, nil
}

func (g *gmailAPI) ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	resp, err := g.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (g *gmailAPI) GetMessage(ctx context.Context, id string) (domain.RawMessage, error) {
	msg, err := g.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return domain.RawMessage{}, err
	}
	return decodeMessage(msg), nil
}

// decodeMessage maps a Gmail message into the provider-neutral RawMessage.
// Malformed payloads degrade to empty fields rather than errors; the parser
// rejects content-less messages on its own.
func decodeMessage(msg *gmail.Message) domain.RawMessage {
	raw := domain.RawMessage{
		ID:         msg.Id,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
	}
	if msg.Payload == nil {
		return raw
	}

	for _, h := range msg.Payload.Headers {
		switch {
		case strings.EqualFold(h.Name, "Subject"):
			raw.Subject = h.Value
		case strings.EqualFold(h.Name, "From"):
			raw.Sender = h.Value
		}
	}

	raw.BodyText = decodeBody(msg.Payload)
	return raw
}

// decodeBody extracts the message text: the first text/plain part of a
// multipart payload, the first part as a fallback, or the single-part body.
func decodeBody(payload *gmail.MessagePart) string {
	part := payload
	if len(payload.Parts) > 0 {
		part = payload.Parts[0]
		for _, p := range payload.Parts {
			if p.MimeType == "text/plain" {
				part = p
				break
			}
		}
	}

	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	return decodeBase64URL(part.Body.Data)
}

// decodeBase64URL decodes Gmail body data: URL-safe alphabet, padding
// optional. Undecodable data yields an empty string.
func decodeBase64URL(data string) string {
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return ""
	}
	return string(b)
}
