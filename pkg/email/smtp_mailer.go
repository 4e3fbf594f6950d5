package email

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"
)

// Config holds SMTP server settings for the production mailer
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string // sender address, falls back to Username when empty
	FromName string
	UseTLS   bool // implicit TLS (port 465 style) instead of STARTTLS
}

// SMTPMailer sends mail over SMTP with STARTTLS or implicit TLS
type SMTPMailer struct {
	config Config
}

// NewSMTPMailer creates a new SMTP mailer
func NewSMTPMailer(config Config) *SMTPMailer {
	return &SMTPMailer{config: config}
}

func (m *SMTPMailer) SendOTP(to, name, code string, expiryMinutes int) error {
	subject := subjectLine("Your login code")
	text := fmt.Sprintf(
		"Hi %s,\n\nYour one-time login code is %s.\nIt expires in %d minutes.\n\nIf you did not request this code, you can ignore this email.",
		name, code, expiryMinutes,
	)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your one-time login code is</p><p style="font-size:28px;letter-spacing:6px;font-weight:bold">%s</p><p>It expires in %d minutes.</p><p>If you did not request this code, you can ignore this email.</p>`,
		name, code, expiryMinutes,
	)
	return m.send(to, subject, text, html)
}

func (m *SMTPMailer) SendVendorApprovalRequest(to, vendorName, storeName, vendorEmail, verifyURL string) error {
	subject := subjectLine("New vendor awaiting approval")
	text := fmt.Sprintf(
		"A new vendor has registered and is waiting for approval.\n\nName: %s\nStore: %s\nEmail: %s\n\nApprove directly: %s",
		vendorName, storeName, vendorEmail, verifyURL,
	)
	html := fmt.Sprintf(
		`<p>A new vendor has registered and is waiting for approval.</p><table><tr><td><b>Name</b></td><td>%s</td></tr><tr><td><b>Store</b></td><td>%s</td></tr><tr><td><b>Email</b></td><td>%s</td></tr></table><p><a href="%s">Approve this vendor</a></p>`,
		vendorName, storeName, vendorEmail, verifyURL,
	)
	return m.send(to, subject, text, html)
}

func (m *SMTPMailer) SendVendorApproved(to, name, portalURL string) error {
	subject := subjectLine("Your vendor account is approved")
	text := fmt.Sprintf(
		"Hi %s,\n\nYour vendor account has been approved. You can now submit warranties and manage your team.\n\nSign in: %s",
		name, portalURL,
	)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your vendor account has been approved. You can now submit warranties and manage your team.</p><p><a href="%s">Sign in to the portal</a></p>`,
		name, portalURL,
	)
	return m.send(to, subject, text, html)
}

func (m *SMTPMailer) SendVendorRejected(to, name, reason string) error {
	subject := subjectLine("Your vendor application")
	text := fmt.Sprintf(
		"Hi %s,\n\nUnfortunately your vendor application was not approved.\n\nReason: %s\n\nYou can reply to this email if you believe this is a mistake.",
		name, reason,
	)
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Unfortunately your vendor application was not approved.</p><p><b>Reason:</b> %s</p><p>You can reply to this email if you believe this is a mistake.</p>`,
		name, reason,
	)
	return m.send(to, subject, text, html)
}

func (m *SMTPMailer) SendAdminInvite(to, invitedBy, portalURL string) error {
	subject := subjectLine("You have been invited as an administrator")
	text := fmt.Sprintf(
		"%s has invited you to administer the warranty portal.\n\nRegister with this email address to activate your access: %s",
		invitedBy, portalURL,
	)
	html := fmt.Sprintf(
		`<p>%s has invited you to administer the warranty portal.</p><p>Register with this email address to activate your access:</p><p><a href="%s">%s</a></p>`,
		invitedBy, portalURL, portalURL,
	)
	return m.send(to, subject, text, html)
}

func (m *SMTPMailer) send(to, subject, textBody, htmlBody string) error {
	if m.config.Host == "" || m.config.Username == "" || m.config.Password == "" {
		return fmt.Errorf("smtp not configured")
	}

	fromAddr := m.config.From
	if fromAddr == "" {
		fromAddr = m.config.Username
	}
	fromHeader := fromAddr
	if m.config.FromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", m.config.FromName, fromAddr)
	}

	msg := buildMessage(fromHeader, fromAddr, to, subject, textBody, htmlBody)
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	if m.config.UseTLS || m.config.Port == 465 {
		return sendMailTLS(addr, m.config.Host, auth, fromAddr, to, msg)
	}

	c, err := smtp.Dial(addr)
	if err != nil {
		return err
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			return err
		}
	}
	if err := c.Auth(auth); err != nil {
		return err
	}
	return deliver(c, fromAddr, to, msg)
}

func sendMailTLS(addr, host string, auth smtp.Auth, from, to, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return err
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Auth(auth); err != nil {
		return err
	}
	return deliver(c, from, to, msg)
}

func deliver(c *smtp.Client, from, to, msg string) error {
	if err := c.Mail(from); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	wc, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write([]byte(msg)); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// buildMessage assembles a multipart/alternative message with text and
// HTML bodies.
func buildMessage(fromHeader, fromAddr, to, subject, textBody, htmlBody string) string {
	boundary := fmt.Sprintf("shieldtech-%d", time.Now().UnixNano())

	var sb strings.Builder
	sb.WriteString("From: " + fromHeader + "\r\n")
	sb.WriteString("Sender: " + fromAddr + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: multipart/alternative; boundary=" + boundary + "\r\n")
	sb.WriteString("\r\n")

	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	sb.WriteString(textBody)
	sb.WriteString("\r\n\r\n")

	sb.WriteString("--" + boundary + "\r\n")
	sb.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	sb.WriteString(htmlBody)
	sb.WriteString("\r\n\r\n")

	sb.WriteString("--" + boundary + "--\r\n")
	return sb.String()
}
