package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"
	"time"
)

var emailTemplates = map[string]string{
	"confirm_account": `<!DOCTYPE html>
<html>
<body>
    <h1>Hello {{.Name}}</h1>
    <p>Welcome to UpTask. To confirm your account follow the link below:</p>
    <p><a href="{{.Link}}">Confirm account</a></p>
    <p>And enter the code: <b>{{.Code}}</b></p>
    <p>This code is only valid for {{.Validity}}.</p>
</body>
</html>`,

	"password_reset": `<!DOCTYPE html>
<html>
<body>
    <h1>Hello {{.Name}}</h1>
    <p>You asked to reset your UpTask password.</p>
    <p>To finish the request follow the link below:</p>
    <p><a href="{{.Link}}">Reset password</a></p>
    <p>And enter the code: <b>{{.Code}}</b></p>
    <p>This code is only valid for {{.Validity}}.</p>
</body>
</html>`,
}

var parsedTemplates = func() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(emailTemplates))
	for name, content := range emailTemplates {
		parsed[name] = template.Must(template.New(name).Parse(content))
	}
	return parsed
}()

type Recipient struct {
	Email string
	Name  string
}

// AuthEmail sends account emails in the background. Delivery failures are
// logged and never reach the HTTP caller.
type AuthEmail struct {
	mailer      Mailer
	frontendURL string
	validity    time.Duration
	timeout     time.Duration
	wg          sync.WaitGroup
}

func NewAuthEmail(mailer Mailer, frontendURL string, validity time.Duration) *AuthEmail {
	return &AuthEmail{
		mailer:      mailer,
		frontendURL: frontendURL,
		validity:    validity,
		timeout:     30 * time.Second,
	}
}

func (a *AuthEmail) SendConfirmationEmail(to Recipient, code string) {
	a.dispatch("confirm_account", "UpTask - Confirm your account", "/auth/confirm-account", to, code)
}

func (a *AuthEmail) SendPasswordResetToken(to Recipient, code string) {
	a.dispatch("password_reset", "UpTask - Reset your password", "/auth/new-password", to, code)
}

// Wait blocks until every pending email has been attempted.
func (a *AuthEmail) Wait() {
	a.wg.Wait()
}

func (a *AuthEmail) dispatch(tmpl, subject, path string, to Recipient, code string) {
	body, err := a.render(tmpl, to, code, path)
	if err != nil {
		LogError("email_render", err, map[string]interface{}{"template": tmpl})
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		deliveryID, err := a.mailer.Send(ctx, Message{
			To:      to.Email,
			Subject: subject,
			HTML:    body,
			Text:    subject,
		})
		if err != nil {
			LogError("email_delivery", err, map[string]interface{}{
				"template": tmpl,
				"to":       to.Email,
			})
			return
		}
		LogEvent("email_sent", map[string]interface{}{
			"template":    tmpl,
			"delivery_id": deliveryID,
		})
	}()
}

func (a *AuthEmail) render(tmpl string, to Recipient, code, path string) (string, error) {
	t, ok := parsedTemplates[tmpl]
	if !ok {
		return "", fmt.Errorf("template '%s' not found", tmpl)
	}

	var body bytes.Buffer
	err := t.Execute(&body, struct {
		Name     string
		Code     string
		Link     string
		Validity string
	}{
		Name:     to.Name,
		Code:     code,
		Link:     a.frontendURL + path,
		Validity: FormatDuration(a.validity),
	})
	if err != nil {
		return "", fmt.Errorf("error executing template: %w", err)
	}
	return body.String(), nil
}
