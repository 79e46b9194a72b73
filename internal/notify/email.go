package notify

import (
	"bytes"
	"html/template"

	"github.com/tasktrack/tasktrack/internal/domain"
)

var emailTemplate = template.Must(template.New("dependency").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif; color: #1f2933;">
  <p>Hi {{.Name}},</p>
  <h2 style="margin-bottom: 4px;">{{.Content.Title}}</h2>
  <p>{{.Content.Text}}</p>
  <table cellpadding="6" style="border-collapse: collapse;">
    <tr><td><strong>Predecessor</strong></td><td>{{.Content.Data.PredecessorTask.Title}}</td><td>{{.Content.Data.PredecessorTask.Status}}</td></tr>
    <tr><td><strong>Successor</strong></td><td>{{.Content.Data.SuccessorTask.Title}}</td><td>{{.Content.Data.SuccessorTask.Status}}</td></tr>
    <tr><td><strong>Relation</strong></td><td colspan="2">{{.Relation}}{{if .Content.Data.Dependency.LagTime}}, lag {{.Content.Data.Dependency.LagTime}}h{{end}}</td></tr>
  </table>
  <p><a href="{{.DashboardURL}}">Open dashboard</a></p>
  <p style="font-size: 11px; color: #9aa5b1;">Notification {{.NotificationID}}</p>
</body>
</html>
`))

type emailView struct {
	Name           string
	Content        domain.Content
	Relation       string
	DashboardURL   string
	NotificationID string
}

// renderEmail renders the HTML body of n for one recipient. It only reads the
// content snapshot so no task lookups are needed.
func renderEmail(n *domain.Notification, name, frontendURL string) (string, error) {
	var buf bytes.Buffer
	err := emailTemplate.Execute(&buf, emailView{
		Name:           name,
		Content:        n.Content,
		Relation:       n.Content.Data.Dependency.Type.Description(),
		DashboardURL:   frontendURL + "/dashboard",
		NotificationID: n.ID,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
