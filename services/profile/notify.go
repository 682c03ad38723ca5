package profile

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/nri-matrimony/matrimony/services/mail"
)

var notificationTemplate = template.Must(template.New("profile_notification").Parse(`<h2>Profile {{.Action}}</h2>
<p><strong>Profile ID:</strong> {{.Profile.ID}}</p>
<p><strong>Name:</strong> {{.Profile.FirstName}} {{.Profile.LastName}}</p>
<p><strong>Gender:</strong> {{.Profile.Gender}}</p>
<p><strong>Location:</strong> {{.Profile.Location}}</p>
<p><strong>Denomination:</strong> {{.Profile.Denomination}}</p>
<p><strong>Phone verified:</strong> {{if .Profile.PhoneVerified}}yes{{else}}no{{end}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<hr>
<p><em>This is an automated notification from {{.AppName}}.</em></p>
`))

// Notifier emails an administrator whenever a profile is created.
type Notifier struct {
	sender  mail.Sender
	to      string
	appName string
	now     func() time.Time
}

func NewNotifier(sender mail.Sender, to, appName string) *Notifier {
	return &Notifier{sender: sender, to: to, appName: appName, now: time.Now}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.to != "" && n.sender != nil && n.sender.Configured()
}

func (n *Notifier) ProfileCreated(ctx context.Context, p *Profile) error {
	if !n.Enabled() {
		return nil
	}

	var body bytes.Buffer
	err := notificationTemplate.Execute(&body, map[string]any{
		"Action":  "Created",
		"Profile": p,
		"Time":    n.now().UTC().Format(time.RFC1123),
		"AppName": n.appName,
	})
	if err != nil {
		return fmt.Errorf("render profile notification: %w", err)
	}

	subject := fmt.Sprintf("Profile Created: Profile #%d", p.ID)
	return n.sender.SendHTML(ctx, []string{n.to}, subject, body.String())
}
