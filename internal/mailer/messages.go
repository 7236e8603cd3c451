package mailer

import "html"

// Confirmation asks the owner of to to confirm their address by opening link.
func Confirmation(to, link string) Message {
	return Message{
		To:      []string{to},
		Subject: "Confirm your liftlog account",
		HTML: `<p>Welcome to liftlog.</p>` +
			`<p><a href="` + html.EscapeString(link) + `">Confirm your email address</a></p>` +
			`<p>If you did not sign up, ignore this email.</p>`,
		Text: "Welcome to liftlog.\n\nConfirm your email address: " + link + "\n\nIf you did not sign up, ignore this email.\n",
	}
}
