package templates

import (
	"fmt"
	"html"
	"strings"
)

// Email is one rendered message: the HTML part and its plaintext twin
type Email struct {
	Subject string
	HTML    string
	Text    string
}

type detail struct {
	label string
	value string
}

// renderLayout wraps already-escaped body markup in the branded shell
func renderLayout(title, accent, bodyHTML string) string {
	safeTitle := html.EscapeString(title)

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; margin: 0; padding: 0; background-color: #f4f4f5; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: %s; padding: 36px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 24px; font-weight: 700; }
    .content { padding: 36px 30px; color: #27272a; line-height: 1.6; font-size: 15px; }
    .details { width: 100%%; border-collapse: collapse; margin: 20px 0; }
    .details td { padding: 8px 0; border-bottom: 1px solid #e4e4e7; }
    .details td.label { color: #71717a; width: 40%%; }
    .code { font-size: 32px; letter-spacing: 8px; font-weight: 700; text-align: center; margin: 24px 0; }
    .note { background: #fafafa; border-left: 4px solid %s; padding: 12px 16px; margin: 20px 0; }
    .cta-button { display: inline-block; background: %s; color: #fff; padding: 14px 28px; border-radius: 8px; text-decoration: none; font-weight: 700; }
    .footer { padding: 24px 30px; text-align: center; color: #a1a1aa; font-size: 12px; border-top: 1px solid #e4e4e7; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
    </div>
    <div class="footer">
      <p>&copy; MotoRent</p>
    </div>
  </div>
</body>
</html>`, safeTitle, accent, accent, accent, safeTitle, bodyHTML)
}

const (
	accentBrand   = "#ea580c"
	accentSuccess = "#16a34a"
	accentDanger  = "#dc2626"
)

func paragraph(s string) string {
	escaped := html.EscapeString(s)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}

func note(s string) string {
	return `<div class="note">` + paragraph(s) + `</div>`
}

func detailsTable(rows []detail) string {
	var b strings.Builder
	b.WriteString(`<table class="details">`)
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(&b, `<tr><td class="label">%s</td><td>%s</td></tr>`, html.EscapeString(r.label), html.EscapeString(r.value))
	}
	b.WriteString(`</table>`)
	return b.String()
}

func detailsText(rows []detail) string {
	var b strings.Builder
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", r.label, r.value)
	}
	return b.String()
}

func button(label, href string) string {
	return fmt.Sprintf(`<p style="text-align:center"><a class="cta-button" href="%s">%s</a></p>`, html.EscapeString(href), html.EscapeString(label))
}

func greeting(name string) string {
	if name == "" {
		return "Hi there,"
	}
	return "Hi " + name + ","
}
