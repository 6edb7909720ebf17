package mailer

import (
	"fmt"
	"time"

	"github.com/alxdev/echocheck-backend/internal/models"
)

const (
	registrationSubject = "EchoCheck - Verify Your Email"
	loginSubject        = "EchoCheck - Login Verification Code"
	welcomeSubject      = "Welcome to EchoCheck! 🎉"
)

const verificationHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="text-align: center; margin-bottom: 30px;">
        <h1 style="color: #2563eb; margin: 0;">EchoCheck</h1>
        <p style="color: #6b7280; margin-top: 5px;">Political Stance Classification</p>
    </div>

    <div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); border-radius: 12px; padding: 30px; text-align: center; margin-bottom: 30px;">
        <p style="color: #fff; margin: 0 0 15px 0; font-size: 16px;">
            Your verification code to %[1]s:
        </p>
        <div style="background: #fff; border-radius: 8px; padding: 20px; display: inline-block;">
            <span style="font-size: 32px; font-weight: bold; letter-spacing: 8px; color: #1f2937;">
                %[2]s
            </span>
        </div>
    </div>

    <div style="background: #f3f4f6; border-radius: 8px; padding: 20px; margin-bottom: 20px;">
        <p style="margin: 0; color: #4b5563; font-size: 14px;">
            ⏱️ This code expires in <strong>%[3]d minutes</strong>.
        </p>
        <p style="margin: 10px 0 0 0; color: #4b5563; font-size: 14px;">
            🔒 If you didn't request this code, you can safely ignore this email.
        </p>
    </div>

    <div style="text-align: center; color: #9ca3af; font-size: 12px; margin-top: 30px;">
        <p style="margin: 0;">
            This email was sent by EchoCheck. Please do not reply to this email.
        </p>
    </div>
</body>
</html>`

const verificationTextTemplate = `EchoCheck - Verification Code

Your verification code to %[1]s: %[2]s

This code expires in %[3]d minutes.

If you didn't request this code, you can safely ignore this email.`

const welcomeHTML = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="text-align: center; margin-bottom: 30px;">
        <h1 style="color: #2563eb; margin: 0;">Welcome to EchoCheck! 🎉</h1>
    </div>

    <div style="background: #f0fdf4; border: 1px solid #86efac; border-radius: 12px; padding: 25px; margin-bottom: 25px;">
        <p style="margin: 0; color: #166534; font-size: 16px;">
            Your account has been successfully created and verified!
        </p>
    </div>

    <p style="color: #4b5563;">
        You can now use EchoCheck to:
    </p>
    <ul style="color: #4b5563;">
        <li>Classify political stance of articles and statements</li>
        <li>Upload documents for batch analysis</li>
        <li>Provide feedback to improve our model</li>
    </ul>

    <div style="text-align: center; color: #9ca3af; font-size: 12px; margin-top: 30px;">
        <p style="margin: 0;">
            Thank you for using EchoCheck!
        </p>
    </div>
</body>
</html>`

// verificationEmail renders the subject and both bodies for a code email.
func verificationEmail(code string, purpose models.VerificationPurpose, expiresIn time.Duration) (subject, html, text string) {
	subject = loginSubject
	action := "log in to your account"
	if purpose == models.PurposeRegistration {
		subject = registrationSubject
		action = "complete your registration"
	}

	minutes := int(expiresIn.Minutes())
	html = fmt.Sprintf(verificationHTMLTemplate, action, code, minutes)
	text = fmt.Sprintf(verificationTextTemplate, action, code, minutes)
	return subject, html, text
}
