package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderNotificationEmail generates the HTML body for a FIR status email.
// recipientName may be empty; the message is HTML-escaped and has newlines
// converted to <br> tags.
func RenderNotificationEmail(subject, recipientName, message string) string {
	escaped := html.EscapeString(message)
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")

	greeting := "Hello,"
	if name := strings.TrimSpace(recipientName); name != "" && name != "Unknown" {
		greeting = fmt.Sprintf("Hello %s,", html.EscapeString(name))
	}

	safeSubject := html.EscapeString(subject)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f5f7; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1f3a68; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 700; }
    .content { padding: 32px 30px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      <p>%s</p>
      <p>%s</p>
      <p>You can follow the progress of your report from the portal.</p>
    </div>
    <div class="footer">
      <p>This is an automated message from the FIR Portal. Please do not reply.</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, greeting, htmlBody)
}
