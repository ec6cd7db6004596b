package mail

import (
	"bytes"
	"html/template"
)

const ResetPasswordSubject = "Password Reset Request"

var resetPasswordTmpl = template.Must(template.New("reset").Parse(`<html>
  <body style="font-family: Arial, sans-serif;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
      <h2 style="color: #333;">Password Reset Request</h2>
      <p>Click the link below to reset your password:</p>
      <p><a href="{{.Link}}">Reset Password</a></p>
      <p>Or use this one-time code: <strong>{{.OTP}}</strong></p>
      <p>This link and code expire in {{.Minutes}} minutes.</p>
      <p>If you didn't request this, please ignore this email.</p>
    </div>
  </body>
</html>
`))

// ResetPasswordBody renders the password reset email.
func ResetPasswordBody(link, otp string, minutes int) (string, error) {
	var buf bytes.Buffer
	err := resetPasswordTmpl.Execute(&buf, struct {
		Link    string
		OTP     string
		Minutes int
	}{link, otp, minutes})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
