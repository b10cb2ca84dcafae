package mail

import (
	"bytes"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/bookbasket/bookbasket-api/pkg/config"
)

// Message is a single outbound e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers messages.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender delivers mail through a plain SMTP relay.
type SMTPSender struct {
	cfg config.SMTPConfig
}

// NewSMTPSender builds a sender from SMTP configuration.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Enabled reports whether a relay host is configured.
func (s *SMTPSender) Enabled() bool {
	return s.cfg.Host != ""
}

// Send delivers the message, blocking until the SMTP round-trip completes.
// Callers are expected to run this off the request path.
func (s *SMTPSender) Send(msg Message) error {
	if !s.Enabled() {
		return fmt.Errorf("smtp host not configured")
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	fromHeader := s.cfg.From
	if s.cfg.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", s.cfg.FromName, s.cfg.From)
	}

	var b strings.Builder
	b.WriteString("From: " + fromHeader + "\r\n")
	b.WriteString("To: " + msg.To + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{msg.To}, []byte(b.String())); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

var (
	welcomeStudentTmpl = template.Must(template.New("welcome_student").Parse(`<html><body>
<h2>Welcome to BookBasket, {{.Name}}!</h2>
<p>Your student registration was received and is awaiting admin approval.</p>
<p>We will let you know as soon as your account is activated.</p>
<hr><p>BookBasket Team</p>
</body></html>`))

	welcomeDonorTmpl = template.Must(template.New("welcome_donor").Parse(`<html><body>
<h2>Welcome to BookBasket, {{.Name}}!</h2>
<p>Your donor account is active. You can log in and start listing books and e-books right away.</p>
<hr><p>BookBasket Team</p>
</body></html>`))

	approvedTmpl = template.Must(template.New("approved").Parse(`<html><body>
<h2>Congratulations, {{.Name}}!</h2>
<p>Your registration for <b>BookBasket</b> has been <b>approved</b>.</p>
<p>You can now log in with your e-mail address <b>{{.Email}}</b> and browse the catalog.</p>
<p>Happy learning!</p>
<hr><p>BookBasket Team</p>
</body></html>`))

	rejectedTmpl = template.Must(template.New("rejected").Parse(`<html><body>
<h2>Hello, {{.Name}}</h2>
<p>We regret to inform you that your registration for <b>BookBasket</b> has been <b>rejected</b>.</p>
<p>If you believe this is a mistake, please contact our support team with your registration e-mail <b>{{.Email}}</b>.</p>
<hr><p>BookBasket Team</p>
</body></html>`))
)

type templateArgs struct {
	Name  string
	Email string
}

// WelcomeStudent renders the post-registration message for students.
func WelcomeStudent(name string) (string, string) {
	return "BookBasket - Registration Received", render(welcomeStudentTmpl, templateArgs{Name: name})
}

// WelcomeDonor renders the post-registration message for donors.
func WelcomeDonor(name string) (string, string) {
	return "BookBasket - Donor Account Active", render(welcomeDonorTmpl, templateArgs{Name: name})
}

// Approved renders the admin-approval message.
func Approved(name, email string) (string, string) {
	return "BookBasket - Registration Approved", render(approvedTmpl, templateArgs{Name: name, Email: email})
}

// Rejected renders the admin-rejection message.
func Rejected(name, email string) (string, string) {
	return "BookBasket - Registration Rejected", render(rejectedTmpl, templateArgs{Name: name, Email: email})
}

func render(t *template.Template, args templateArgs) string {
	buf := &bytes.Buffer{}
	if err := t.Execute(buf, args); err != nil {
		return ""
	}
	return buf.String()
}
