package enum

import "strings"

type EmailSecurity string

const (
	EmailSecurityNone     EmailSecurity = "none"
	EmailSecuritySSL      EmailSecurity = "ssl"
	EmailSecurityTLS      EmailSecurity = "tls"
	EmailSecurityStartTLS EmailSecurity = "startTLS"
)

func (t EmailSecurity) String() string {
	return string(t)
}

func GetEmailSecurity(s string) EmailSecurity {
	switch strings.ToLower(s) {
	case "ssl":
		return EmailSecuritySSL
	case "tls":
		return EmailSecurityTLS
	case "starttls":
		return EmailSecurityStartTLS
	default:
		return EmailSecurityNone
	}
}
