package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/models"
)

const (
	// FormField is the multipart field carrying the file.
	FormField = "file"

	maxResponseBody = 1 << 20
	excerptLen      = 200
	// progress stays below this until the response confirms success
	webhookCeiling = 99
)

// Webhook posts each file as multipart/form-data to a user-supplied URL and
// reads the public URL back from the response. It never retries.
type Webhook struct {
	client     *http.Client
	extractors []Extractor
	logger     logging.Logger
}

func NewWebhook(timeout time.Duration, l logging.Logger) *Webhook {
	return NewWebhookWithClient(&http.Client{Timeout: timeout}, DefaultExtractors, l)
}

func NewWebhookWithClient(client *http.Client, extractors []Extractor, l logging.Logger) *Webhook {
	return &Webhook{
		client:     client,
		extractors: extractors,
		logger:     l.With("transport", "webhook"),
	}
}

func (w *Webhook) Name() string { return "webhook" }

func (w *Webhook) Validate(target Target) error {
	raw := strings.TrimSpace(target.WebhookURL)
	if raw == "" {
		return configurationMissing("webhook url not set")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return configurationMissing(fmt.Sprintf("invalid webhook url %q", raw))
	}
	return nil
}

func (w *Webhook) Send(ctx context.Context, file models.File, target Target) <-chan Event {
	e := newEmitter()

	go func() {
		if err := w.Validate(target); err != nil {
			e.fail(err)
			return
		}

		publicURL, err := w.post(ctx, file, strings.TrimSpace(target.WebhookURL), e)
		if err != nil {
			w.logger.Warn(ctx, "webhook upload failed", "file", file.Name(), "error", err)
			e.fail(err)
			return
		}
		w.logger.Info(ctx, "webhook upload done", "file", file.Name(), "url", publicURL)
		e.succeed(publicURL)
	}()

	return e.events()
}

func (w *Webhook) post(ctx context.Context, file models.File, endpoint string, e *emitter) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", newUploadError(ErrTransportFailure, fmt.Sprintf("open %s: %v", file.Name(), err), err)
	}
	defer src.Close()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeForm(mw, file, &progressReader{r: src, total: file.Size(), report: e.progress}))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return "", newUploadError(ErrTransportFailure, fmt.Sprintf("build request: %v", err), err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return "", newUploadError(ErrTransportFailure, fmt.Sprintf("request failed: %v", err), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", newUploadError(ErrTransportFailure, fmt.Sprintf("read response: %v", err), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if ex := excerpt(body); ex != "" {
			reason += ": " + ex
		}
		return "", newUploadError(ErrRemoteRejection, reason, nil)
	}

	return ParseResponse(body, w.extractors)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeForm(mw *multipart.Writer, file models.File, r io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, FormField, quoteEscaper.Replace(file.Name())))
	ct := file.ContentType()
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}

func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	r := []rune(s)
	if len(r) > excerptLen {
		return string(r[:excerptLen]) + "..."
	}
	return s
}

// progressReader reports the share of total read so far, capped below 100.
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		p.report(int(min(p.read*100/p.total, webhookCeiling)))
	}
	return n, err
}
