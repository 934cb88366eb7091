package notification

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/frahmantamala/property-management/internal/core/events"
)

const (
	KindConfirmation = "confirmation"
	KindReminder     = "reminder"
)

var funcs = template.FuncMap{
	"date": func(v interface{}) string {
		switch t := v.(type) {
		case interface{ Format(string) string }:
			return t.Format("02 Jan 2006")
		default:
			return ""
		}
	},
}

var confirmationTemplate = template.Must(template.New(KindConfirmation).Funcs(funcs).Parse(
	`Hello {{.TenantName}},

We have received your rent payment for {{.PropertyName}}.

Amount:    {{.Amount}}
Due date:  {{date .DueDate}}
{{- if .PaidDate}}
Paid on:   {{date .PaidDate}}
{{- end}}
{{- if .PaymentMethod}}
Method:    {{.PaymentMethod}}
{{- end}}
{{- if .Reference}}
Reference: {{.Reference}}
{{- end}}

Thank you.
`))

var reminderTemplate = template.Must(template.New(KindReminder).Funcs(funcs).Parse(
	`Hello {{.TenantName}},

This is a reminder that your rent for {{.PropertyName}} is {{if eq .Status "late"}}overdue{{else}}due{{end}}.

Amount:   {{.Amount}}
Due date: {{date .DueDate}}

Please arrange payment at your earliest convenience.
`))

func render(kind string, notice events.PaymentNotice) (Message, error) {
	var (
		tmpl    *template.Template
		subject string
	)
	switch kind {
	case KindConfirmation:
		tmpl, subject = confirmationTemplate, fmt.Sprintf("Payment received for %s", notice.PropertyName)
	case KindReminder:
		tmpl, subject = reminderTemplate, fmt.Sprintf("Rent reminder for %s", notice.PropertyName)
	default:
		return Message{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, notice); err != nil {
		return Message{}, fmt.Errorf("render %s: %w", kind, err)
	}

	return Message{To: notice.TenantEmail, Subject: subject, Body: body.String()}, nil
}
