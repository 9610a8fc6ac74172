package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/Kerhoff/dibs/internal/models"
)

type messageTemplate struct {
	subject *template.Template
	body    *template.Template
}

func mustTemplate(name, subject, body string) messageTemplate {
	return messageTemplate{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Parse(body)),
	}
}

var templates = map[models.NotificationType]messageTemplate{
	models.NotificationFriendshipNew: mustTemplate("friendship_new",
		`{{.Follower.FirstName}} is now following you`,
		`{{.Follower.FirstName}} {{.Follower.LastName}} started following your wish lists.`),
	models.NotificationGiftComment: mustTemplate("gift_comment",
		`New comment on {{.Gift.Name}}`,
		`{{.Comment.FirstName}} {{.Comment.LastName}} wrote on {{.Gift.Name}}:

{{.Comment.Body}}`),
	models.NotificationGiftCommentAlso: mustTemplate("gift_comment_also",
		`{{.Comment.FirstName}} also commented on {{.Gift.Name}}`,
		`{{.Comment.FirstName}} {{.Comment.LastName}} replied on a gift you commented on, {{.Gift.Name}}:

{{.Comment.Body}}`),
	models.NotificationGiftReceived: mustTemplate("gift_received",
		`{{.Gift.Name}} was received`,
		`The gift you dibbed, {{.Gift.Name}}, has been marked as received.`),
	models.NotificationGiftDelivered: mustTemplate("gift_delivered",
		`{{.Dib.FirstName}} delivered {{.Gift.Name}}`,
		`{{.Dib.FirstName}} {{.Dib.LastName}} marked their dib on {{.Gift.Name}} as delivered.`),
}

// Render produces the subject line and body for n.
func Render(n *models.Notification) (string, string, error) {
	tpl, ok := templates[n.Type]
	if !ok {
		return "", "", fmt.Errorf("no template for notification type %q", n.Type)
	}

	var subject, body bytes.Buffer
	if err := tpl.subject.Execute(&subject, n); err != nil {
		return "", "", fmt.Errorf("failed to render %s subject: %w", n.Type, err)
	}
	if err := tpl.body.Execute(&body, n); err != nil {
		return "", "", fmt.Errorf("failed to render %s body: %w", n.Type, err)
	}
	return strings.TrimSpace(subject.String()), strings.TrimSpace(body.String()), nil
}
