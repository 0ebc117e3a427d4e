package notifier

import (
	"strings"
)

// Templates are plain text with {placeholder} markers.
// Which placeholders apply depends on the message kind, unknown
// markers are left as is.
type Templates struct {
	LinkSubject string
	LinkBody    string

	ConfirmSubject string
	ConfirmBody    string

	OperatorSubject string
	OperatorBody    string
}

func DefaultTemplates() Templates {
	return Templates{
		LinkSubject: "Your one-time voting link (Order #{order_id})",
		LinkBody: "Hi {customer_name},\n\n" +
			"Thanks for your purchase! Click the one-time link below to cast your vote:\n\n" +
			"{link}\n\n" +
			"This link expires in {expiry_hours} hours and can only be used once.",

		ConfirmSubject: "Vote received – thank you!",
		ConfirmBody: "Hi {customer_name},\n\n" +
			"We received your vote for \"{platform}\". Order #{order_id}.\n\n" +
			"Thanks!",

		OperatorSubject: "New Vote Submission - Order #{order_id}",
		OperatorBody: "New vote submission received:\n\n" +
			"Customer: {customer_name}\n" +
			"Email: {customer_email}\n" +
			"Platform: {platform}\n" +
			"Order ID: {order_id}\n" +
			"Submission Date: {submission_date}\n\n" +
			"This is an automated notification.",
	}
}

// withDefaults fills empty fields from DefaultTemplates
func (t Templates) withDefaults() Templates {
	def := DefaultTemplates()

	setDefault := func(field *string, value string) {
		if *field == "" {
			*field = value
		}
	}

	setDefault(&t.LinkSubject, def.LinkSubject)
	setDefault(&t.LinkBody, def.LinkBody)
	setDefault(&t.ConfirmSubject, def.ConfirmSubject)
	setDefault(&t.ConfirmBody, def.ConfirmBody)
	setDefault(&t.OperatorSubject, def.OperatorSubject)
	setDefault(&t.OperatorBody, def.OperatorBody)

	return t
}

type placeholders map[string]string

func (p placeholders) render(template string) string {
	pairs := make([]string, 0, len(p)*2)
	for marker, value := range p {
		pairs = append(pairs, marker, value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
