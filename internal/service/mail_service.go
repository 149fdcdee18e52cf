package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
	"github.com/RoyceAzure/lab/ecommerce/internal/infra/mail"
)

type IMailService interface {
	SendOTP(ctx context.Context, data OTPMailData) error
	SendPasswordResetSuccess(ctx context.Context, email, username string) error
	SendOrderNotification(ctx context.Context, data OrderMailData) error
}

type MailService struct {
	sender      mail.EmailSender
	companyName string
	templates   *template.Template
}

// OTPMailData 驗證碼信件內容
type OTPMailData struct {
	Email         string
	UserName      string
	Code          string
	Type          constants.OTPType
	ExpiryMinutes int
	CompanyName   string
}

type OrderMailItem struct {
	Name     string
	Size     string
	Quantity int
	Price    string
}

// OrderMailData 訂單通知, Headline 決定信件標題
type OrderMailData struct {
	Email       string
	UserName    string
	Headline    string
	OrderNumber string
	Status      string
	Note        string
	Items       []OrderMailItem
	TotalAmount string
	CompanyName string
}

func NewMailService(sender mail.EmailSender, companyName string) *MailService {
	if sender == nil {
		panic("mail sender cannot be nil")
	}
	tmpl := template.Must(template.New("otp").Parse(otpTemplate))
	template.Must(tmpl.New("password_reset").Parse(passwordResetTemplate))
	template.Must(tmpl.New("order").Parse(orderTemplate))
	return &MailService{sender: sender, companyName: companyName, templates: tmpl}
}

func (m *MailService) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("執行 HTML 模板失敗: %w", err)
	}
	return buf.String(), nil
}

func (m *MailService) SendOTP(ctx context.Context, data OTPMailData) error {
	data.CompanyName = m.companyName
	if data.ExpiryMinutes == 0 {
		data.ExpiryMinutes = int(constants.OTPExpiresAfter.Minutes())
	}
	html, err := m.render("otp", data)
	if err != nil {
		return err
	}
	subject := "Email Verification OTP"
	if data.Type == constants.OTPTypePasswordReset {
		subject = "Password Reset OTP"
	}
	return m.sender.SendEmail(subject, html, []string{data.Email}, nil, nil, nil)
}

func (m *MailService) SendPasswordResetSuccess(ctx context.Context, email, username string) error {
	html, err := m.render("password_reset", map[string]string{
		"UserName":    username,
		"CompanyName": m.companyName,
	})
	if err != nil {
		return err
	}
	return m.sender.SendEmail("Password Reset Successful", html, []string{email}, nil, nil, nil)
}

func (m *MailService) SendOrderNotification(ctx context.Context, data OrderMailData) error {
	data.CompanyName = m.companyName
	html, err := m.render("order", data)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("%s - %s", data.Headline, data.OrderNumber)
	return m.sender.SendEmail(subject, html, []string{data.Email}, nil, nil, nil)
}

const otpTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  {{if eq .Type "password_reset"}}
  <h2>Password Reset Request</h2>
  <p>Hello {{.UserName}},</p>
  <p>We received a request to reset your password. Use the OTP below to proceed:</p>
  {{else}}
  <h2>Welcome to {{.CompanyName}}!</h2>
  <p>Hello {{.UserName}},</p>
  <p>Please use the OTP below to verify your email address:</p>
  {{end}}
  <div style="background-color: #f4f4f4; padding: 10px; text-align: center; font-size: 24px; font-weight: bold; letter-spacing: 5px; margin: 20px 0;">
    {{.Code}}
  </div>
  <p>This OTP is valid for {{.ExpiryMinutes}} minutes.</p>
  <p>If you didn't request this, please ignore this email.</p>
  <p>Best regards,<br>{{.CompanyName}}</p>
</div>
`

const passwordResetTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Password Reset Successful</h2>
  <p>Hello {{.UserName}},</p>
  <p>Your password has been reset successfully. If you didn't make this change, please contact support immediately.</p>
  <p>Best regards,<br>{{.CompanyName}}</p>
</div>
`

const orderTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>{{.Headline}}</h2>
  <p>Hello {{.UserName}},</p>
  <p>Order <strong>{{.OrderNumber}}</strong> is now <strong>{{.Status}}</strong>.</p>
  {{if .Note}}<p>{{.Note}}</p>{{end}}
  {{if .Items}}
  <table style="width: 100%; border-collapse: collapse;">
    <tr><th align="left">Item</th><th>Size</th><th>Qty</th><th align="right">Price</th></tr>
    {{range .Items}}
    <tr><td>{{.Name}}</td><td align="center">{{.Size}}</td><td align="center">{{.Quantity}}</td><td align="right">{{.Price}}</td></tr>
    {{end}}
  </table>
  {{end}}
  {{if .TotalAmount}}<p>Total: <strong>{{.TotalAmount}}</strong></p>{{end}}
  <p>Best regards,<br>{{.CompanyName}}</p>
</div>
`
