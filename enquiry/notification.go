package enquiry

import (
	"fmt"
	"html"
	"strings"
	"unicode"

	"github.com/nkoudou/veltrabackend/config"
	"github.com/nkoudou/veltrabackend/models"
)

// buildNotification renders the internal email for a new enquiry. Every
// buyer-supplied field passes through html.EscapeString before interpolation,
// and the name interpolated into the subject is stripped of control
// characters so it cannot terminate a mail header line; submissions are
// untrusted input all the way down.
func buildNotification(cfg config.Notify, rec *models.TradeEnquiry) (subject, body string) {
	subject = strings.ReplaceAll(cfg.Subject, "{{name}}", headerValue(rec.Name))

	esc := html.EscapeString
	var b strings.Builder
	b.WriteString("<h2>New trade enquiry</h2>\n<table>\n")
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "<tr><td><strong>%s</strong></td><td>%s</td></tr>\n", label, esc(value))
	}
	row("Name", rec.Name)
	row("Company", rec.Company)
	row("Email", rec.Email)
	row("Phone", rec.Phone)
	row("Country", rec.Country)
	row("Role", rec.Role)
	row("Products", strings.Join(rec.ProductInterest, ", "))
	row("Quantity", rec.Quantity)
	b.WriteString("</table>\n")
	fmt.Fprintf(&b, "<p>%s</p>\n", esc(rec.Message))

	return subject, b.String()
}

// headerValue removes control characters, CR and LF included, from a value
// destined for a mail header.
func headerValue(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
